package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesDocumentedDefaults(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.Parser.UseClang)
	assert.Equal(t, []string{"c", "h"}, cfg.Parser.Extensions)
	assert.Equal(t, []string{".git", "build", "node_modules"}, cfg.Parser.ExcludeDirs)
	assert.True(t, cfg.Index.Incremental)
	assert.Equal(t, 2048, cfg.Index.MaxMemoryMB)
	assert.True(t, cfg.Analysis.TrackAsync)
	assert.True(t, cfg.Analysis.ResolveFuncPtrs)
	assert.Equal(t, 20, cfg.Analysis.MaxCallDepth)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowsight.yaml")
	cfg := Default()
	cfg.ProjectRoot = "/src/my-driver"
	cfg.Analysis.MaxCallDepth = 10

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadOverlaysPartialFileOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("projectRoot: /src/thing\n"), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/src/thing", loaded.ProjectRoot)
	assert.True(t, loaded.Index.Incremental)
	assert.Equal(t, 20, loaded.Analysis.MaxCallDepth)
}
