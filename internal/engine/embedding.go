package engine

import (
	"math"
	"sort"
	"sync"
)

// embeddingIndex is the engine's C3: a concurrent map from memory id to a
// normalized vector, searched by a full linear cosine-similarity scan. No
// ANN structure is required at this scale (spec.md §4.3).
type embeddingIndex struct {
	mu         sync.RWMutex
	vectors    map[uint64][]float32
	dimensions int // 0 until the first upsert fixes it
}

func newEmbeddingIndex() *embeddingIndex {
	return &embeddingIndex{vectors: make(map[uint64][]float32)}
}

// upsert stores vec for id, L2-normalizing it first. The first call fixes
// the index's dimensionality; later calls with a different length fail with
// ErrEmbeddingShape.
func (e *embeddingIndex) upsert(id uint64, vec []float32) error {
	normalized := normalize(vec)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dimensions == 0 {
		e.dimensions = len(normalized)
	} else if len(normalized) != e.dimensions {
		return ErrEmbeddingShape
	}
	e.vectors[id] = normalized
	return nil
}

func (e *embeddingIndex) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.vectors, id)
}

func (e *embeddingIndex) get(id uint64) ([]float32, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.vectors[id]
	return v, ok
}

type scoredID struct {
	ID    uint64
	Score float32
}

// search returns the top-k (id, score) pairs by cosine similarity against
// queryVec, which it normalizes first. Since stored vectors are already
// unit length, this degenerates to a dot product.
func (e *embeddingIndex) search(queryVec []float32, k int) []scoredID {
	q := normalize(queryVec)

	e.mu.RLock()
	out := make([]scoredID, 0, len(e.vectors))
	for id, v := range e.vectors {
		out = append(out, scoredID{ID: id, Score: dot(q, v)})
	}
	e.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

func (e *embeddingIndex) scoreOf(id uint64, queryVec []float32) (float32, bool) {
	v, ok := e.get(id)
	if !ok {
		return 0, false
	}
	return dot(normalize(queryVec), v), true
}

func (e *embeddingIndex) indexedCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.vectors)
}

func (e *embeddingIndex) dimension() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dimensions
}

// normalize returns a copy of v scaled to unit L2 length. A zero vector (or
// empty) is returned unchanged.
func normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}
	norm := float32(math.Sqrt(sumSq))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// dot returns the dot product of a and b, or 0 if their lengths differ or
// either is empty (mirrors cosine_similarity's degenerate cases in the
// original source).
func dot(a, b []float32) float32 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
