package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(Options{})
}

func TestAddAndRecall(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	m, err := e.Add(ctx, AddMemoryInput{Content: "User prefers Rust", Tags: []string{"pref"}})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), m.ID)
	assert.Equal(t, float32(1.0), m.Confidence, "add() never accepts caller-supplied confidence")

	hist, err := e.History(m.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, OpAdd, hist[0].Operation)
	assert.True(t, !hist[0].Timestamp.After(m.CreatedAt.Add(1)))
}

func TestUpdateWritesAudit(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	m, err := e.Add(ctx, AddMemoryInput{Content: "User prefers Rust"})
	require.NoError(t, err)

	newContent := "User prefers Rust for systems work"
	updated, err := e.Update(ctx, m.ID, UpdatePatch{Content: &newContent}, "clarify", "a1")
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))

	hist, err := e.History(m.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, OpAdd, hist[0].Operation)
	assert.Equal(t, OpUpdate, hist[1].Operation)
	assert.Equal(t, "User prefers Rust", hist[1].OldContent)
	assert.Equal(t, newContent, hist[1].NewContent)
}

func TestInvalidateExcludesFromDefaultList(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	m, err := e.Add(ctx, AddMemoryInput{Content: "X"})
	require.NoError(t, err)

	_, err = e.Invalidate(ctx, m.ID, "stale", "a1")
	require.NoError(t, err)

	visible := e.List(ListFilter{})
	assert.Empty(t, visible)

	withInvalid := e.List(ListFilter{IncludeInvalidated: true})
	require.Len(t, withInvalid, 1)

	hist, err := e.History(m.ID)
	require.NoError(t, err)
	assert.Equal(t, OpInvalidate, hist[len(hist)-1].Operation)

	_, err = e.Invalidate(ctx, m.ID, "stale again", "a1")
	assert.ErrorIs(t, err, ErrAlreadyInvalid)
}

func TestGetNotFound(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Get(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTagsAllMustMatch(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, AddMemoryInput{Content: "a", Tags: []string{"x"}})
	require.NoError(t, err)
	_, err = e.Add(ctx, AddMemoryInput{Content: "b", Tags: []string{"x", "y"}})
	require.NoError(t, err)

	both := e.List(ListFilter{Tags: []string{"x", "y"}})
	require.Len(t, both, 1)
	assert.Equal(t, "b", both[0].Content)
}

func TestCandidateMemoriesTagsAnyMatch(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, AddMemoryInput{Content: "a", Tags: []string{"x"}})
	require.NoError(t, err)
	_, err = e.Add(ctx, AddMemoryInput{Content: "b", Tags: []string{"y"}})
	require.NoError(t, err)

	candidates := e.CandidateMemories(ListFilter{Tags: []string{"x", "y"}})
	assert.Len(t, candidates, 2, "search's candidate filter is any-match, not all-match")
}

func TestIDMonotonicity(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	a, err := e.Add(ctx, AddMemoryInput{Content: "a"})
	require.NoError(t, err)
	b, err := e.Add(ctx, AddMemoryInput{Content: "b"})
	require.NoError(t, err)
	assert.Equal(t, a.ID+1, b.ID)
}
