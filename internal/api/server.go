package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/intermernet/activate/internal/activities"
	"github.com/intermernet/activate/internal/activity"
	"github.com/intermernet/activate/internal/config"
	"github.com/intermernet/activate/internal/filetypes"
	"github.com/intermernet/activate/internal/realtime"
	"github.com/intermernet/activate/internal/syncstate"
	"github.com/intermernet/activate/internal/timeutil"
	"github.com/intermernet/activate/internal/times"
	"github.com/intermernet/activate/internal/track"
	"github.com/intermernet/activate/internal/units"
)

// Server is the main struct for the API. It holds all dependencies required
// by the HTTP handlers.
type Server struct {
	config    *config.Config
	broker    *realtime.Broker
	clock     timeutil.Clock
	syncState *syncstate.State

	// mu gives handlers exclusive use of the activity list, which is not
	// safe for concurrent use.
	mu   sync.Mutex
	list *activities.List
}

// NewServer creates a Server over an activity list and its sync state.
func NewServer(cfg *config.Config, list *activities.List, state *syncstate.State, broker *realtime.Broker, clock timeutil.Clock) *Server {
	return &Server{
		config:    cfg,
		broker:    broker,
		clock:     clock,
		syncState: state,
		list:      list,
	}
}

// now is the current time in the configured time zone.
func (s *Server) now() time.Time {
	return s.clock.Now().In(s.config.Location)
}

// trackOptions are applied to every track the server builds.
func (s *Server) trackOptions() []track.Option {
	return []track.Option{track.WithSpeedRange(s.config.SpeedRange), track.WithLocation(s.config.Location)}
}

// envelope is used for creating structured JSON responses,
// e.g. `envelope{"activity": a}`.
type envelope map[string]interface{}

// writeJSON is a helper method for sending JSON responses.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}, headers ...http.Header) {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		log.Printf("ERROR: could not marshal response: %v", err)
		http.Error(w, "Internal Server Error: Failed to marshal JSON", http.StatusInternalServerError)
		return
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

// errorJSON sends `{"error": "message"}`. Without an explicit status the
// status is derived from the error.
func (s *Server) errorJSON(w http.ResponseWriter, err error, status ...int) {
	statusCode := statusFor(err)
	if len(status) > 0 {
		statusCode = status[0]
	}
	if statusCode >= http.StatusInternalServerError {
		log.Printf("ERROR: %v", err)
	}
	s.writeJSON(w, statusCode, envelope{"error": err.Error()})
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, activities.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, filetypes.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, filetypes.ErrEmptyTrack),
		errors.Is(err, track.ErrMissingEssentialField),
		errors.Is(err, track.ErrInterpolation),
		errors.Is(err, track.ErrInconsistentTrack),
		errors.Is(err, track.ErrLengthMismatch),
		errors.Is(err, track.ErrMissingField),
		errors.Is(err, track.ErrEmptyField):
		return http.StatusUnprocessableEntity
	case errors.Is(err, times.ErrUnknownPeriod),
		errors.Is(err, activity.ErrNotManual),
		errors.Is(err, units.ErrDimensionMismatch),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

// badRequest wraps a client input problem so it maps to 400.
func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// readJSON decodes a JSON request body, rejecting unknown fields and
// trailing data.
func (s *Server) readJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}
