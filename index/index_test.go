package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/flowsight/flowsight/cparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDriverC = `
static int helper(int x) {
    return x + 1;
}

static int probe(struct device *dev) {
    return helper(1);
}
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "driver.c"), []byte(sampleDriverC), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "build"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build", "generated.c"), []byte(sampleDriverC), 0o644))
	return dir
}

func TestScannerSkipsExcludedDirs(t *testing.T) {
	dir := writeProject(t)
	cfg := DefaultConfig()
	files, err := NewScanner(cfg).Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "driver.c"), files[0])
}

func TestIndexAllFindsFunctions(t *testing.T) {
	dir := writeProject(t)
	cfg := DefaultConfig()
	ix := NewIndexer(dir, cfg, cparser.New(), nil)

	idx, err := ix.IndexAll(context.Background())
	require.NoError(t, err)
	assert.Contains(t, idx.Functions, "probe")
	assert.Contains(t, idx.Functions, "helper")
}

func TestReindexChangedIsValueEqualWithNoChanges(t *testing.T) {
	dir := writeProject(t)
	cfg := DefaultConfig()
	ix := NewIndexer(dir, cfg, cparser.New(), nil)

	first, err := ix.IndexAll(context.Background())
	require.NoError(t, err)

	second, err := ix.IndexChanged(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Functions, second.Functions)
	assert.Equal(t, first.Structs, second.Structs)
	assert.Equal(t, first.Files, second.Files)
}

func TestFileTrackerDetectsContentChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.c")
	require.NoError(t, os.WriteFile(path, []byte("int a;"), 0o644))

	tracker := NewFileTracker()
	_, changed, err := tracker.Scan(path)
	require.NoError(t, err)
	assert.True(t, changed)

	_, changedAgain, err := tracker.Scan(path)
	require.NoError(t, err)
	assert.False(t, changedAgain)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("int b;"), 0o644))
	_, changedAfterEdit, err := tracker.Scan(path)
	require.NoError(t, err)
	assert.True(t, changedAfterEdit)
}

func TestTreeCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewTreeCache(2)
	c.Put(1, nil)
	c.Put(2, nil)
	c.Get(1) // touch 1, making 2 the LRU
	c.Put(3, nil)

	_, ok1 := c.Get(1)
	_, ok2 := c.Get(2)
	_, ok3 := c.Get(3)
	assert.True(t, ok1)
	assert.False(t, ok2)
	assert.True(t, ok3)
}

func TestRootDetectorFindsMakefileMarker(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Makefile"), []byte(""), 0o644))
	sub := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(sub, 0o755))
	nested := filepath.Join(sub, "driver.c")
	require.NoError(t, os.WriteFile(nested, []byte(""), 0o644))

	root, err := NewRootDetector().DetectRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}
