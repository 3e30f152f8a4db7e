package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hivemindlabs/hivemindd/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	eng := engine.New(engine.Options{})
	m, err := New(dir, eng, nil)
	require.NoError(t, err)

	err = m.Load()
	assert.NoError(t, err)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	eng := engine.New(engine.Options{})
	ctx := context.Background()

	_, err := eng.Add(ctx, engine.AddMemoryInput{Content: "remember this", AgentID: "agent-1", UserID: "user-1"})
	require.NoError(t, err)

	m, err := New(dir, eng, nil)
	require.NoError(t, err)
	require.NoError(t, m.Save())

	restored := engine.New(engine.Options{})
	m2, err := New(dir, restored, nil)
	require.NoError(t, err)
	require.NoError(t, m2.Load())

	stats := restored.Stats()
	assert.Equal(t, int64(1), stats.MemoryCount)
}

func TestSaveIsAtomicNoStaleTempFilesLeftOnSuccess(t *testing.T) {
	dir := t.TempDir()
	eng := engine.New(engine.Options{})
	m, err := New(dir, eng, nil)
	require.NoError(t, err)
	require.NoError(t, m.Save())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, fileName, e.Name())
	}
}

func TestLoadCorruptFileReturnsSnapshotCorruptError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte("{not valid json"), 0o644))

	eng := engine.New(engine.Options{})
	m, err := New(dir, eng, nil)
	require.NoError(t, err)

	err = m.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrSnapshotCorrupt)
}

func TestNextIDAfterRestoreContinuesFromMax(t *testing.T) {
	dir := t.TempDir()
	eng := engine.New(engine.Options{})
	ctx := context.Background()

	first, err := eng.Add(ctx, engine.AddMemoryInput{Content: "one", AgentID: "a", UserID: "u"})
	require.NoError(t, err)

	m, err := New(dir, eng, nil)
	require.NoError(t, err)
	require.NoError(t, m.Save())

	restored := engine.New(engine.Options{})
	m2, err := New(dir, restored, nil)
	require.NoError(t, err)
	require.NoError(t, m2.Load())

	second, err := restored.Add(ctx, engine.AddMemoryInput{Content: "two", AgentID: "a", UserID: "u"})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}
