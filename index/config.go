// Package index discovers C source files under a project root, tracks
// their content across runs, and drives the parallel parse/analyze
// pipeline that produces a project-wide symbol index.
package index

import "runtime"

// Config controls how a project is scanned and indexed.
type Config struct {
	Extensions  []string
	ExcludeDirs []string
	Parallelism int
	Incremental bool
	MaxMemoryMB int
}

// Option configures a Config, following the functional-options shape.
type Option func(*Config)

// DefaultConfig mirrors the ambient defaults: .c/.h sources, the common
// VCS/build/dependency directories excluded, one worker per CPU, and
// incremental reindexing on by default.
func DefaultConfig(opts ...Option) Config {
	c := Config{
		Extensions:  []string{".c", ".h"},
		ExcludeDirs: []string{".git", "build", "node_modules"},
		Parallelism: runtime.GOMAXPROCS(0),
		Incremental: true,
		MaxMemoryMB: 2048,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithExtensions overrides the set of file extensions considered source.
func WithExtensions(exts ...string) Option {
	return func(c *Config) { c.Extensions = exts }
}

// WithExcludeDirs overrides the directory-name denylist.
func WithExcludeDirs(dirs ...string) Option {
	return func(c *Config) { c.ExcludeDirs = dirs }
}

// WithParallelism overrides the worker-pool size; values below 1 are
// clamped to 1.
func WithParallelism(n int) Option {
	return func(c *Config) {
		if n < 1 {
			n = 1
		}
		c.Parallelism = n
	}
}

// WithIncremental toggles incremental reindexing.
func WithIncremental(enabled bool) Option {
	return func(c *Config) { c.Incremental = enabled }
}

func (c Config) hasExtension(name string) bool {
	for _, ext := range c.Extensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return true
		}
	}
	return false
}

func (c Config) isExcludedDir(name string) bool {
	for _, d := range c.ExcludeDirs {
		if d == name {
			return true
		}
	}
	return false
}
