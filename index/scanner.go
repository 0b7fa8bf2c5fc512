package index

import (
	"os"
	"path/filepath"
	"sort"
)

// Scanner walks a project root collecting source files that pass Config's
// extension filter and denylist, skipping excluded directories without
// descending into them.
type Scanner struct {
	Config Config
}

// NewScanner returns a Scanner using cfg's extension/exclude rules.
func NewScanner(cfg Config) *Scanner {
	return &Scanner{Config: cfg}
}

// Scan returns every matching file path under root, sorted for
// deterministic ordering (load-bearing for property P8's byte-identical
// reindex guarantee).
func (s *Scanner) Scan(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && s.Config.isExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.Config.hasExtension(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
