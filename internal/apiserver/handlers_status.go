package apiserver

import "net/http"

type statusResponse struct {
	Engine  any `json:"engine"`
	Metrics any `json:"metrics"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Engine:  s.engine.Stats(),
		Metrics: s.metrics.Snapshot(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
