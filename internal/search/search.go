// Package search implements HiveMindDB's hybrid keyword+vector search
// engine (C6): tokenized keyword scoring fused with embedding cosine
// similarity.
package search

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hivemindlabs/hivemindd/internal/engine"
	"golang.org/x/sync/singleflight"
)

// Fusion weights are hard-coded, not config-tunable, matching the original
// source and SPEC_FULL.md's Open Question decision (§9a).
const (
	fusionVectorWeight  float32 = 0.7
	fusionKeywordWeight float32 = 0.3

	// vectorOnlyThreshold is the minimum fused score a vector-only result
	// (zero keyword overlap) needs to surface at all.
	vectorOnlyThreshold float32 = 0.3

	// substringBonus is added to the keyword score, capped at 1, when the
	// full query string appears verbatim in the content — a Go-only
	// addition beyond the original source's scorer, per spec.md §4.6's
	// explicit requirement.
	substringBonus float32 = 0.2
)

// tokenPattern splits on non-alphanumeric boundaries, matching the original
// source's tokenizer exactly (no Unicode-aware segmentation).
var tokenPattern = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func tokenize(s string) []string {
	lower := strings.ToLower(s)
	raw := tokenPattern.Split(lower, -1)
	out := raw[:0]
	for _, tok := range raw {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// Source is the engine's read surface the search engine needs: candidate
// generation, a stored vector's similarity to a query vector, and query
// embedding. Implemented by *engine.Engine.
type Source interface {
	CandidateMemories(filter engine.ListFilter) []engine.Memory
	VectorScore(id uint64, queryVec []float32) (float32, bool)
	EmbedQuery(ctx context.Context, text string) (vec []float32, available bool, err error)
}

// Request is one hybrid search request.
type Request struct {
	Query  string
	Filter engine.ListFilter
	Limit  int
}

// Result is one ranked hit.
type Result struct {
	Memory engine.Memory
	Score  float32
}

// Engine scores and ranks a Source's candidate memories against a query.
// Concurrent identical (query, filter) searches are collapsed via
// singleflight so a hot query only scans the candidate set once.
type Engine struct {
	source Source
	group  singleflight.Group
}

// New constructs a search Engine backed by source.
func New(source Source) *Engine {
	return &Engine{source: source}
}

// Search ranks source's candidates against req and returns the top-Limit
// results by fused score, ties broken by most recent UpdatedAt then
// highest ID (spec.md §4.6).
func (s *Engine) Search(ctx context.Context, req Request) ([]Result, error) {
	key := fmt.Sprintf("%s\x00%+v\x00%d", req.Query, req.Filter, req.Limit)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.search(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Result), nil
}

func (s *Engine) search(ctx context.Context, req Request) ([]Result, error) {
	candidates := s.source.CandidateMemories(req.Filter)

	queryVec, vectorsAvailable, err := s.source.EmbedQuery(ctx, req.Query)
	if err != nil {
		// Transport failure degrades to keyword-only, never fails the
		// search (spec.md §7 — embedder absence/failure is always
		// tolerated).
		vectorsAvailable = false
	}

	queryTokens := tokenize(req.Query)
	queryLower := strings.ToLower(req.Query)

	results := make([]Result, 0, len(candidates))
	for _, m := range candidates {
		kScore := keywordScore(m.Content, queryTokens, queryLower)

		var fused float32
		if vectorsAvailable {
			vScore, hasVector := s.source.VectorScore(m.ID, queryVec)
			if !hasVector {
				vScore = 0
			}
			fused = fusionVectorWeight*clamp01(vScore) + fusionKeywordWeight*kScore
			if kScore == 0 && fused < vectorOnlyThreshold {
				continue
			}
		} else {
			fused = kScore
		}

		if fused <= 0 {
			continue
		}
		results = append(results, Result{Memory: m, Score: fused})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if !results[i].Memory.UpdatedAt.Equal(results[j].Memory.UpdatedAt) {
			return results[i].Memory.UpdatedAt.After(results[j].Memory.UpdatedAt)
		}
		return results[i].Memory.ID > results[j].Memory.ID
	})

	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}

// keywordScore is (matched query tokens / total query tokens), plus a
// capped +0.2 bonus if the full query substring appears in content
// (spec.md §4.6).
func keywordScore(content string, queryTokens []string, queryLower string) float32 {
	if len(queryTokens) == 0 {
		return 0
	}
	contentLower := strings.ToLower(content)

	var matched int
	for _, tok := range queryTokens {
		if strings.Contains(contentLower, tok) {
			matched++
		}
	}
	score := float32(matched) / float32(len(queryTokens))

	if queryLower != "" && strings.Contains(contentLower, queryLower) {
		score += substringBonus
	}
	return clamp01(score)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
