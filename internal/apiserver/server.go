// Package apiserver implements the HTTP REST surface (spec.md §6): a JSON
// API over internal/engine plus a WebSocket upgrade endpoint. Grounded on
// crates/core/src/api.rs's route table (exact paths, status codes,
// broadcast-on-mutation semantics), adapted to net/http.ServeMux's Go 1.22+
// method+wildcard routing, mirroring the teacher's own bare
// http.NewServeMux() use in cmd/knowhow-server/main.go rather than reaching
// for a router library the teacher never used for its REST surface.
package apiserver

import (
	"log/slog"
	"net/http"

	"github.com/hivemindlabs/hivemindd/internal/bus"
	"github.com/hivemindlabs/hivemindd/internal/engine"
	"github.com/hivemindlabs/hivemindd/internal/metrics"
	"github.com/hivemindlabs/hivemindd/internal/search"
	"github.com/hivemindlabs/hivemindd/internal/wsfanout"
)

// Server bundles the dependencies every handler needs.
type Server struct {
	engine  *engine.Engine
	search  *search.Engine
	bus     *bus.Bus
	logger  *slog.Logger
	metrics *metrics.Collector
}

// New constructs a Server. Pass the same bus wired into eng's Options.Bus
// so REST writes and WebSocket fan-out observe the same events.
func New(eng *engine.Engine, searchEngine *search.Engine, b *bus.Bus, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: eng, search: searchEngine, bus: b, logger: logger, metrics: metrics.NewCollector()}
}

// Handler builds the full route table as an http.Handler, wrapped in the
// logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/memories", s.handleAddMemory)
	mux.HandleFunc("GET /api/v1/memories", s.handleListMemories)
	mux.HandleFunc("GET /api/v1/memories/{id}", s.handleGetMemory)
	mux.HandleFunc("PUT /api/v1/memories/{id}", s.handleUpdateMemory)
	mux.HandleFunc("DELETE /api/v1/memories/{id}", s.handleInvalidateMemory)
	mux.HandleFunc("GET /api/v1/memories/{id}/history", s.handleMemoryHistory)

	mux.HandleFunc("POST /api/v1/search", s.handleSearch)
	mux.HandleFunc("POST /api/v1/extract", s.handleExtract)

	mux.HandleFunc("POST /api/v1/entities", s.handleAddEntity)
	mux.HandleFunc("GET /api/v1/entities/{id}", s.handleGetEntity)
	mux.HandleFunc("POST /api/v1/entities/find", s.handleFindEntity)
	mux.HandleFunc("GET /api/v1/entities/{id}/relationships", s.handleEntityRelationships)
	mux.HandleFunc("POST /api/v1/relationships", s.handleAddRelationship)
	mux.HandleFunc("POST /api/v1/graph/traverse", s.handleGraphTraverse)

	mux.HandleFunc("POST /api/v1/channels", s.handleCreateChannel)
	mux.HandleFunc("GET /api/v1/channels", s.handleListChannels)
	mux.HandleFunc("POST /api/v1/channels/{id}/share", s.handleShareToChannel)

	mux.HandleFunc("POST /api/v1/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/v1/tasks", s.handleListTasks)
	mux.HandleFunc("GET /api/v1/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("POST /api/v1/tasks/{id}/claim", s.handleClaimTask)
	mux.HandleFunc("POST /api/v1/tasks/{id}/start", s.handleStartTask)
	mux.HandleFunc("POST /api/v1/tasks/{id}/complete", s.handleCompleteTask)
	mux.HandleFunc("POST /api/v1/tasks/{id}/fail", s.handleFailTask)
	mux.HandleFunc("GET /api/v1/tasks/{id}/events", s.handleTaskEvents)

	mux.HandleFunc("POST /api/v1/agents/register", s.handleRegisterAgent)
	mux.HandleFunc("GET /api/v1/agents", s.handleListAgents)
	mux.HandleFunc("POST /api/v1/agents/{agent_id}/heartbeat", s.handleAgentHeartbeat)

	mux.Handle("GET /ws", wsfanout.New(s.bus, s.engine, s.logger))

	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /health", s.handleHealth)

	return loggingMiddleware(s.logger, corsMiddleware(mux))
}
