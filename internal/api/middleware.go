package api

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is a custom type used for keys in context.Context. Using a custom
// type prevents collisions between context keys defined in different packages.
type contextKey string

// clientContextKey stores the id of the progress stream a request reports to.
const clientContextKey = contextKey("clientID")

// clientMiddleware picks up the caller's progress stream id from the
// 'X-Client-ID' header, or from the 'client' URL query parameter for
// EventSource connections, which cannot set headers.
func (s *Server) clientMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := strings.TrimSpace(r.Header.Get("X-Client-ID"))
		if clientID == "" {
			clientID = strings.TrimSpace(r.URL.Query().Get("client"))
		}
		if clientID != "" {
			r = r.WithContext(context.WithValue(r.Context(), clientContextKey, clientID))
		}
		next.ServeHTTP(w, r)
	})
}

// clientIDFromContext returns the request's progress stream id, or "".
func clientIDFromContext(r *http.Request) string {
	clientID, _ := r.Context().Value(clientContextKey).(string)
	return clientID
}

// progress returns a progress callback reporting task to the request's
// stream. Requests without a stream id report nowhere.
func (s *Server) progress(r *http.Request, task string) func(done, total int) {
	clientID := clientIDFromContext(r)
	if clientID == "" {
		return nil
	}
	return s.broker.Reporter(clientID, task)
}
