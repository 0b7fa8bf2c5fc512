package index

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/flowsight/flowsight/model"
	"github.com/viant/afs"
)

// FileVersion is the fingerprint of one tracked source file: its mtime and
// size are checked first since they're free; the content hash is only
// recomputed when either of those changed, exactly like the original's
// cheap-then-expensive staged comparison.
type FileVersion struct {
	Path    string
	ModTime time.Time
	Size    int64
	Hash    uint64
}

// FileTracker records the last-seen FileVersion of every file it has been
// asked about, and reports whether a file changed since that snapshot.
type FileTracker struct {
	mu       sync.Mutex
	versions map[string]FileVersion
	fs       afs.Service
}

// NewFileTracker returns an empty tracker backed by the local filesystem
// service (afs.New()).
func NewFileTracker() *FileTracker {
	return &FileTracker{versions: map[string]FileVersion{}, fs: afs.New()}
}

// Scan stats (and, if needed, hashes) path, updates the tracker's record,
// and reports whether the file's content changed since the previous Scan
// of the same path (a file seen for the first time counts as changed).
func (t *FileTracker) Scan(path string) (FileVersion, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileVersion{}, false, err
	}

	t.mu.Lock()
	prev, known := t.versions[path]
	t.mu.Unlock()

	if known && prev.ModTime.Equal(info.ModTime()) && prev.Size == info.Size() {
		return prev, false, nil
	}

	data, downloadErr := t.fs.DownloadWithURL(context.Background(), path)
	if downloadErr != nil || len(data) == 0 {
		var readErr error
		data, readErr = os.ReadFile(path)
		if readErr != nil {
			if downloadErr != nil {
				return FileVersion{}, false, downloadErr
			}
			return FileVersion{}, false, readErr
		}
	}
	hash, err := model.Hash(data)
	if err != nil {
		return FileVersion{}, false, err
	}

	version := FileVersion{Path: path, ModTime: info.ModTime(), Size: info.Size(), Hash: hash}
	changed := !known || prev.Hash != hash

	t.mu.Lock()
	t.versions[path] = version
	t.mu.Unlock()

	return version, changed, nil
}

// Snapshot returns a copy of every tracked file's current version.
func (t *FileTracker) Snapshot() map[string]FileVersion {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]FileVersion, len(t.versions))
	for k, v := range t.versions {
		out[k] = v
	}
	return out
}
