package apiserver

import (
	"net/http"
	"time"

	"github.com/hivemindlabs/hivemindd/internal/engine"
	"github.com/hivemindlabs/hivemindd/internal/metrics"
)

type addMemoryRequest struct {
	Content   string   `json:"content"`
	Kind      string   `json:"kind"`
	AgentID   string   `json:"agent_id"`
	UserID    string   `json:"user_id"`
	SessionID string   `json:"session_id"`
	Source    string   `json:"source"`
	Tags      []string `json:"tags"`
	Metadata  string   `json:"metadata"`
}

func (s *Server) handleAddMemory(w http.ResponseWriter, r *http.Request) {
	var req addMemoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	kind := engine.KindFact
	if req.Kind != "" {
		kind = engine.MemoryKind(req.Kind)
	}

	start := time.Now()
	memory, err := s.engine.Add(r.Context(), engine.AddMemoryInput{
		Content:   req.Content,
		Kind:      kind,
		AgentID:   req.AgentID,
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Source:    req.Source,
		Tags:      req.Tags,
		Metadata:  req.Metadata,
	})
	s.metrics.RecordTiming(metrics.OpMemoryWrite, time.Since(start))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, memory)
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	memory, err := s.engine.Get(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, memory)
}

type updateMemoryRequest struct {
	Content    *string  `json:"content"`
	Tags       []string `json:"tags"`
	Confidence *float32 `json:"confidence"`
	Metadata   *string  `json:"metadata"`
	Reason     string   `json:"reason"`
	ChangedBy  string   `json:"changed_by"`
}

func (s *Server) handleUpdateMemory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req updateMemoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	changedBy := req.ChangedBy
	if changedBy == "" {
		changedBy = "api"
	}

	memory, err := s.engine.Update(r.Context(), id, engine.UpdatePatch{
		Content:    req.Content,
		Tags:       req.Tags,
		Confidence: req.Confidence,
		Metadata:   req.Metadata,
	}, req.Reason, changedBy)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, memory)
}

type invalidateMemoryRequest struct {
	Reason    string `json:"reason"`
	ChangedBy string `json:"changed_by"`
}

func (s *Server) handleInvalidateMemory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req invalidateMemoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	changedBy := req.ChangedBy
	if changedBy == "" {
		changedBy = "api"
	}

	memory, err := s.engine.Invalidate(r.Context(), id, req.Reason, changedBy)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, memory)
}

func (s *Server) handleMemoryHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	history, err := s.engine.History(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := engine.ListFilter{
		AgentID:            q.Get("agent_id"),
		UserID:             q.Get("user_id"),
		IncludeInvalidated: q.Get("include_invalidated") == "true",
	}
	if tags := q["tags"]; len(tags) > 0 {
		filter.Tags = tags
	}
	writeJSON(w, http.StatusOK, s.engine.List(filter))
}
