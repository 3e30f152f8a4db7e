package apiserver

import (
	"net/http"

	"github.com/hivemindlabs/hivemindd/internal/engine"
)

type createChannelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ChannelType string `json:"channel_type"`
	CreatedBy   string `json:"created_by"`
}

func (s *Server) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	var req createChannelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	channelType := engine.ChannelPublic
	if req.ChannelType != "" {
		channelType = engine.ChannelType(req.ChannelType)
	}

	channel, err := s.engine.CreateChannel(engine.CreateChannelInput{
		Name:        req.Name,
		Description: req.Description,
		ChannelType: channelType,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, channel)
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.ListChannels())
}

type shareToChannelRequest struct {
	MemoryID uint64 `json:"memory_id"`
	SharedBy string `json:"shared_by"`
}

func (s *Server) handleShareToChannel(w http.ResponseWriter, r *http.Request) {
	channelID, ok := pathUint64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req shareToChannelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	membership, err := s.engine.ShareMemoryToChannel(r.Context(), channelID, req.MemoryID, req.SharedBy)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, membership)
}
