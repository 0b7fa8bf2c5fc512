package index

import (
	"os"
	"path/filepath"
)

// RootDetector identifies the root directory of a C project by walking up
// from a starting path looking for build-system markers: the marker files
// a Linux kernel module or plain C project actually carries.
type RootDetector struct {
	markers []string
}

// NewRootDetector returns a detector recognising the common C/kernel
// build markers.
func NewRootDetector() *RootDetector {
	return &RootDetector{
		markers: []string{
			"Kbuild",
			"Kconfig",
			"Makefile",
			"CMakeLists.txt",
			"configure.ac",
			".git",
		},
	}
}

// DetectRoot searches upward from path for the nearest marker file,
// returning path itself (absolute) if no marker is found anywhere above
// it.
func (d *RootDetector) DetectRoot(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	startDir := absPath
	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		startDir = filepath.Dir(absPath)
	}

	dir := startDir
	for {
		for _, marker := range d.markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return startDir, nil
}
