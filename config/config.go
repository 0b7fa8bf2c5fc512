// Package config defines FlowSight's project configuration file shape and
// its defaults.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ParserConfig controls how source files are parsed.
type ParserConfig struct {
	UseClang      bool     `yaml:"useClang"`
	Extensions    []string `yaml:"extensions"`
	ExcludeDirs   []string `yaml:"excludeDirs"`
}

// IndexConfig controls the project indexer.
type IndexConfig struct {
	Incremental  bool `yaml:"incremental"`
	MaxMemoryMB  int  `yaml:"maxMemoryMb"`
}

// AnalysisConfig controls the analysis passes run over each indexed file.
type AnalysisConfig struct {
	TrackAsync        bool `yaml:"trackAsync"`
	ResolveFuncPtrs   bool `yaml:"resolveFuncPtrs"`
	MaxCallDepth      int  `yaml:"maxCallDepth"`
}

// Config is the top-level FlowSight project configuration.
type Config struct {
	ProjectRoot string         `yaml:"projectRoot"`
	Parser      ParserConfig   `yaml:"parser"`
	Index       IndexConfig    `yaml:"index"`
	Analysis    AnalysisConfig `yaml:"analysis"`
}

// Default returns the configuration FlowSight uses when no project
// configuration file is present.
func Default() Config {
	return Config{
		Parser: ParserConfig{
			UseClang:    false,
			Extensions:  []string{"c", "h"},
			ExcludeDirs: []string{".git", "build", "node_modules"},
		},
		Index: IndexConfig{
			Incremental: true,
			MaxMemoryMB: 2048,
		},
		Analysis: AnalysisConfig{
			TrackAsync:      true,
			ResolveFuncPtrs: true,
			MaxCallDepth:    20,
		},
	}
}

// Load reads a YAML configuration file, overlaying it onto Default() so an
// incomplete file still yields sane values for every omitted field.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
