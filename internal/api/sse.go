package api

import (
	"errors"
	"fmt"
	"net/http"
)

// handleProgressStream is the Server-Sent Events handler through which long
// computations report their progress.
func (s *Server) handleProgressStream(w http.ResponseWriter, r *http.Request) {
	clientID := clientIDFromContext(r)
	if clientID == "" {
		s.errorJSON(w, errors.New("a client id is required"), http.StatusBadRequest)
		return
	}

	// Flusher is needed to send data to the client as it becomes available.
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.errorJSON(w, fmt.Errorf("streaming unsupported"), http.StatusInternalServerError)
		return
	}

	// Register before the headers go out, so a client that has seen the
	// response can rely on receiving progress.
	clientChan := s.broker.AddClient(clientID)
	defer s.broker.RemoveClient(clientID, clientChan)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case message, open := <-clientChan:
			if !open {
				// Replaced by a newer connection with the same id.
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", message)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
