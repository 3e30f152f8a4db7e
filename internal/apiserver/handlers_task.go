package apiserver

import (
	"net/http"
	"time"

	"github.com/hivemindlabs/hivemindd/internal/engine"
)

type createTaskRequest struct {
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Priority             int        `json:"priority"`
	RequiredCapabilities []string   `json:"required_capabilities"`
	CreatedBy            string     `json:"created_by"`
	Dependencies         []uint64   `json:"dependencies"`
	Deadline             *time.Time `json:"deadline"`
	Metadata             string     `json:"metadata"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := s.engine.CreateTask(engine.CreateTaskInput{
		Title:                req.Title,
		Description:          req.Description,
		Priority:             req.Priority,
		RequiredCapabilities: req.RequiredCapabilities,
		CreatedBy:            req.CreatedBy,
		Dependencies:         req.Dependencies,
		Deadline:             req.Deadline,
		Metadata:             req.Metadata,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// statusFilter and agentFilter mirror the original's ListTasksQuery:
// filtering happens over the full snapshot since ListTasks itself has no
// filter parameters (spec.md doesn't require the engine layer to special-
// case every query combination the REST surface exposes).
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	statusFilter := engine.TaskStatus(q.Get("status"))
	agentFilter := q.Get("agent_id")

	all := s.engine.ListTasks()
	filtered := make([]engine.Task, 0, len(all))
	for _, t := range all {
		if statusFilter != "" && t.Status != statusFilter {
			continue
		}
		if agentFilter != "" && t.AssignedAgent != agentFilter {
			continue
		}
		filtered = append(filtered, t)
	}
	writeJSON(w, http.StatusOK, filtered)
}

type getTaskResponse struct {
	Task   engine.Task        `json:"task"`
	Events []engine.TaskEvent `json:"events"`
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	task, err := s.engine.GetTask(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	events, err := s.engine.TaskEvents(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, getTaskResponse{Task: task, Events: events})
}

type taskAgentRequest struct {
	AgentID string `json:"agent_id"`
}

func (s *Server) handleClaimTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req taskAgentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := s.engine.ClaimTask(id, req.AgentID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleStartTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req taskAgentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := s.engine.StartTask(id, req.AgentID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

type completeTaskRequest struct {
	AgentID string `json:"agent_id"`
	Result  string `json:"result"`
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req completeTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := s.engine.CompleteTask(id, req.AgentID, req.Result)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

type failTaskRequest struct {
	AgentID string `json:"agent_id"`
	Reason  string `json:"reason"`
}

func (s *Server) handleFailTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req failTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := s.engine.FailTask(id, req.AgentID, req.Reason)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleTaskEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	events, err := s.engine.TaskEvents(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
