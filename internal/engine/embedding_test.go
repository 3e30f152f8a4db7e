package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarityIdenticalVectors(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, dot(normalize(v), normalize(v)), 1e-6)
}

func TestCosineSimilarityOrthogonalVectors(t *testing.T) {
	assert.InDelta(t, 0.0, dot(normalize([]float32{1, 0}), normalize([]float32{0, 1})), 1e-6)
}

func TestCosineSimilarityOppositeVectors(t *testing.T) {
	assert.InDelta(t, -1.0, dot(normalize([]float32{1, 0}), normalize([]float32{-1, 0})), 1e-6)
}

func TestCosineSimilarityEmptyVectors(t *testing.T) {
	assert.Equal(t, float32(0), dot(nil, nil))
}

func TestCosineSimilarityDifferentLengths(t *testing.T) {
	assert.Equal(t, float32(0), dot([]float32{1, 2}, []float32{1, 2, 3}))
}

func TestEmbeddingIndexUpsertAndSearch(t *testing.T) {
	idx := newEmbeddingIndex()
	require.NoError(t, idx.upsert(1, []float32{1, 0, 0}))
	require.NoError(t, idx.upsert(2, []float32{0, 1, 0}))
	require.NoError(t, idx.upsert(3, []float32{0.9, 0.1, 0}))

	results := idx.search([]float32{1, 0, 0}, 2)
	require.Len(t, results, 2)
	assert.Equal(t, uint64(1), results[0].ID)
	assert.Equal(t, uint64(3), results[1].ID)
}

func TestEmbeddingIndexDimensionMismatch(t *testing.T) {
	idx := newEmbeddingIndex()
	require.NoError(t, idx.upsert(1, []float32{1, 0, 0}))
	err := idx.upsert(2, []float32{1, 0})
	assert.ErrorIs(t, err, ErrEmbeddingShape)
}

func TestHybridScoreWeighting(t *testing.T) {
	const vectorWeight, keywordWeight = float32(0.7), float32(0.3)
	keyword := float32(0.5)
	vector := float32(1.0)
	fused := vectorWeight*vector + keywordWeight*keyword
	assert.InDelta(t, 0.85, fused, 1e-6)
}
