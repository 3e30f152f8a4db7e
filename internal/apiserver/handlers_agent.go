package apiserver

import (
	"net/http"

	"github.com/hivemindlabs/hivemindd/internal/engine"
)

type registerAgentRequest struct {
	AgentID      string   `json:"agent_id"`
	Name         string   `json:"name"`
	AgentType    string   `json:"agent_type"`
	Capabilities []string `json:"capabilities"`
	Metadata     string   `json:"metadata"`
}

func (s *Server) handleRegisterAgent(w http.ResponseWriter, r *http.Request) {
	var req registerAgentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	agent, err := s.engine.RegisterAgent(engine.RegisterAgentInput{
		AgentID:      req.AgentID,
		Name:         req.Name,
		AgentType:    req.AgentType,
		Capabilities: req.Capabilities,
		Metadata:     req.Metadata,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, agent)
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.ListAgents())
}

func (s *Server) handleAgentHeartbeat(w http.ResponseWriter, r *http.Request) {
	agentID := r.PathValue("agent_id")
	if _, err := s.engine.Heartbeat(agentID); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
