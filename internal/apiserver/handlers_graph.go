package apiserver

import (
	"net/http"
	"time"

	"github.com/hivemindlabs/hivemindd/internal/engine"
	"github.com/hivemindlabs/hivemindd/internal/metrics"
)

type addEntityRequest struct {
	Name        string `json:"name"`
	EntityType  string `json:"entity_type"`
	Description string `json:"description"`
	AgentID     string `json:"agent_id"`
	Metadata    string `json:"metadata"`
}

func (s *Server) handleAddEntity(w http.ResponseWriter, r *http.Request) {
	var req addEntityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entity, err := s.engine.AddEntity(r.Context(), engine.AddEntityInput{
		Name:        req.Name,
		EntityType:  req.EntityType,
		Description: req.Description,
		AgentID:     req.AgentID,
		Metadata:    req.Metadata,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entity)
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	entity, err := s.engine.GetEntity(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entity)
}

type findEntityRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleFindEntity(w http.ResponseWriter, r *http.Request) {
	var req findEntityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entity, err := s.engine.FindEntityByName(req.Name)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entity)
}

type addRelationshipRequest struct {
	SourceEntityID uint64  `json:"source_entity_id"`
	TargetEntityID uint64  `json:"target_entity_id"`
	RelationType   string  `json:"relation_type"`
	Description    string  `json:"description"`
	Weight         float32 `json:"weight"`
	CreatedBy      string  `json:"created_by"`
	Metadata       string  `json:"metadata"`
}

func (s *Server) handleAddRelationship(w http.ResponseWriter, r *http.Request) {
	var req addRelationshipRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rel, err := s.engine.AddRelationship(r.Context(), engine.AddRelationshipInput{
		SourceEntityID: req.SourceEntityID,
		TargetEntityID: req.TargetEntityID,
		RelationType:   req.RelationType,
		Description:    req.Description,
		Weight:         req.Weight,
		CreatedBy:      req.CreatedBy,
		Metadata:       req.Metadata,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rel)
}

func (s *Server) handleEntityRelationships(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Neighbors(id))
}

type traverseRequest struct {
	EntityID uint64 `json:"entity_id"`
	Depth    *int   `json:"depth"`
}

// defaultTraverseDepth matches the original's default_depth() = 2.
const defaultTraverseDepth = 2

func (s *Server) handleGraphTraverse(w http.ResponseWriter, r *http.Request) {
	var req traverseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	depth := defaultTraverseDepth
	if req.Depth != nil {
		depth = *req.Depth
	}

	start := time.Now()
	nodes, err := s.engine.Traverse(req.EntityID, depth)
	s.metrics.RecordTiming(metrics.OpGraphTraverse, time.Since(start))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}
