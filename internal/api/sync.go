package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// handleGetSync returns the remote id of an activity on a sync service.
func (s *Server) handleGetSync(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")
	id, err := activityID(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	remote, ok, err := s.syncState.Get(service, id)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	if !ok {
		s.errorJSON(w, errors.New("activity is not synced with this service"), http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"sync": SyncResponse{ActivityID: id, Service: service, RemoteID: remote}})
}

// handlePutSync records the remote id of an activity on a sync service.
func (s *Server) handlePutSync(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")
	id, err := activityID(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	var payload struct {
		RemoteID string `json:"remote_id"`
	}
	if err := s.readJSON(r, &payload); err != nil {
		s.errorJSON(w, err)
		return
	}
	if strings.TrimSpace(payload.RemoteID) == "" {
		s.errorJSON(w, badRequest("remote_id is required"))
		return
	}

	s.mu.Lock()
	_, err = s.list.ByID(id)
	s.mu.Unlock()
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	if err := s.syncState.Add(service, id, payload.RemoteID); err != nil {
		s.errorJSON(w, err)
		return
	}
	if err := s.syncState.Commit(); err != nil {
		s.errorJSON(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"sync": SyncResponse{ActivityID: id, Service: service, RemoteID: payload.RemoteID}})
}
