package learn

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddQueryDedupesByCallSite(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "learn.json"))
	assert.True(t, s.AddQuery(PendingQuery{CallSite: "dispatch:5", Expression: "handlers[i]()"}))
	assert.False(t, s.AddQuery(PendingQuery{CallSite: "dispatch:5", Expression: "handlers[i]()"}))
	assert.Equal(t, 1, s.Stats().TotalPendingQueries)
}

func TestAnswerMovesPendingToAnnotation(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "learn.json"))
	s.AddQuery(PendingQuery{CallSite: "dispatch:5", Expression: "handlers[i]()"})

	assert.True(t, s.Answer("dispatch:5", "handler1", "confirmed via trace"))
	assert.Equal(t, 0, s.Stats().TotalPendingQueries)
	assert.Equal(t, 1, s.Stats().TotalAnnotations)

	a, ok := s.FindAnnotation("dispatch:5")
	require.True(t, ok)
	assert.Equal(t, "handler1", a.Target)
}

func TestAnswerUnknownCallSiteFails(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "learn.json"))
	assert.False(t, s.Answer("nowhere:1", "x", ""))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learn.json")
	s := NewStore(path)
	s.AddQuery(PendingQuery{CallSite: "a:1", Expression: "f()"})
	require.NoError(t, s.Save())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Stats().TotalPendingQueries)
}

func TestLoadMissingFileReturnsEmptyStore(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	assert.Equal(t, Stats{}, s.Stats())
}
