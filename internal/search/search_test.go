package search

import (
	"context"
	"testing"
	"time"

	"github.com/hivemindlabs/hivemindd/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is a minimal in-memory Source for testing the scoring/ranking
// logic in isolation from the engine package.
type fakeSource struct {
	memories      []engine.Memory
	vectors       map[uint64][]float32
	queryVector   []float32
	vectorsEnabled bool
}

func (f *fakeSource) CandidateMemories(engine.ListFilter) []engine.Memory { return f.memories }

func (f *fakeSource) VectorScore(id uint64, _ []float32) (float32, bool) {
	v, ok := f.vectors[id]
	if !ok {
		return 0, false
	}
	return v[0], true
}

func (f *fakeSource) EmbedQuery(context.Context, string) ([]float32, bool, error) {
	if !f.vectorsEnabled {
		return nil, false, nil
	}
	return f.queryVector, true, nil
}

func TestKeywordOnlySearch(t *testing.T) {
	now := time.Now()
	src := &fakeSource{memories: []engine.Memory{
		{ID: 1, Content: "User prefers Rust", UpdatedAt: now},
		{ID: 2, Content: "User prefers Go", UpdatedAt: now},
	}}
	s := New(src)

	results, err := s.Search(context.Background(), Request{Query: "Rust"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(1), results[0].Memory.ID)
	assert.GreaterOrEqual(t, results[0].Score, float32(0.3))
}

func TestSearchIdempotence(t *testing.T) {
	now := time.Now()
	src := &fakeSource{memories: []engine.Memory{
		{ID: 1, Content: "alpha beta", UpdatedAt: now},
		{ID: 2, Content: "beta gamma", UpdatedAt: now},
	}}
	s := New(src)

	first, err := s.Search(context.Background(), Request{Query: "beta"})
	require.NoError(t, err)
	second, err := s.Search(context.Background(), Request{Query: "beta"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSearchTieBreakByRecencyThenID(t *testing.T) {
	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	src := &fakeSource{memories: []engine.Memory{
		{ID: 1, Content: "match", UpdatedAt: older},
		{ID: 2, Content: "match", UpdatedAt: newer},
	}}
	s := New(src)

	results, err := s.Search(context.Background(), Request{Query: "match"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, uint64(2), results[0].Memory.ID, "most recently updated wins ties")
}

func TestSubstringBonusCappedAtOne(t *testing.T) {
	score := keywordScore("exact phrase here", tokenize("exact phrase"), "exact phrase")
	assert.LessOrEqual(t, score, float32(1.0))
	assert.Equal(t, float32(1.0), score)
}

func TestVectorOnlyBelowThresholdExcluded(t *testing.T) {
	src := &fakeSource{
		memories:       []engine.Memory{{ID: 1, Content: "unrelated content", UpdatedAt: time.Now()}},
		vectors:        map[uint64][]float32{1: {0.1}},
		queryVector:    []float32{1},
		vectorsEnabled: true,
	}
	s := New(src)
	results, err := s.Search(context.Background(), Request{Query: "something else entirely"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHybridFusionWeighting(t *testing.T) {
	src := &fakeSource{
		memories:       []engine.Memory{{ID: 1, Content: "rust programming", UpdatedAt: time.Now()}},
		vectors:        map[uint64][]float32{1: {1.0}},
		queryVector:    []float32{1},
		vectorsEnabled: true,
	}
	s := New(src)
	results, err := s.Search(context.Background(), Request{Query: "rust"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	// kScore = 1.0 (single token matches) + 0.2 substring bonus, capped at 1
	// fused = 0.7*1.0 + 0.3*1.0 = 1.0
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}
