package apiserver

import (
	"net/http"
	"time"

	"github.com/hivemindlabs/hivemindd/internal/engine"
	"github.com/hivemindlabs/hivemindd/internal/metrics"
	"github.com/hivemindlabs/hivemindd/internal/search"
)

type searchRequest struct {
	Query   string   `json:"query"`
	AgentID string   `json:"agent_id"`
	UserID  string   `json:"user_id"`
	Tags    []string `json:"tags"`
	Limit   int      `json:"limit"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	start := time.Now()
	results, err := s.search.Search(r.Context(), search.Request{
		Query: req.Query,
		Filter: engine.ListFilter{
			AgentID: req.AgentID,
			UserID:  req.UserID,
			Tags:    req.Tags,
		},
		Limit: req.Limit,
	})
	s.metrics.RecordTiming(metrics.OpSearch, time.Since(start))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

type extractRequest struct {
	AgentID  string                     `json:"agent_id"`
	UserID   string                     `json:"user_id"`
	Messages []engine.ExtractionMessage `json:"messages"`
}

type extractResponse struct {
	MemoriesAdded []engine.Memory                `json:"memories_added"`
	Entities      []engine.ExtractedEntity       `json:"entities"`
	Relationships []engine.ExtractedRelationship `json:"relationships"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !s.engine.Extractor().Available() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "extraction is not configured"})
		return
	}

	existing := s.engine.CandidateMemories(engine.ListFilter{AgentID: req.AgentID, UserID: req.UserID})
	start := time.Now()
	result, err := s.engine.Extractor().Extract(r.Context(), req.Messages, existing)
	s.metrics.RecordTiming(metrics.OpExtraction, time.Since(start))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "extraction failed: " + err.Error()})
		return
	}

	resp := extractResponse{
		Entities:      result.Entities,
		Relationships: result.Relationships,
		MemoriesAdded: make([]engine.Memory, 0, len(result.Facts)),
	}
	for _, fact := range result.Facts {
		memory, err := s.engine.ApplyExtraction(r.Context(), fact, req.AgentID, req.UserID)
		if err != nil {
			s.logger.Warn("apply extracted fact failed", "error", err)
			continue
		}
		resp.MemoriesAdded = append(resp.MemoriesAdded, memory)
	}

	writeJSON(w, http.StatusOK, resp)
}
