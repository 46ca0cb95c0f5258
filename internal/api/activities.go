package api

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/intermernet/activate/internal/activities"
	"github.com/intermernet/activate/internal/activity"
	"github.com/intermernet/activate/internal/times"
	"github.com/intermernet/activate/internal/track"
)

// activityID parses the {activityID} URL parameter.
func activityID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "activityID"))
	if err != nil {
		return uuid.Nil, badRequest("invalid activity ID")
	}
	return id, nil
}

// filter is the sport and period selection shared by list and summary
// endpoints.
type filter struct {
	sports []string
	period times.Period
	back   int
}

// parseFilter reads 'sport' (repeated or comma separated), 'period' and
// 'back' from the query string.
func parseFilter(r *http.Request) (filter, error) {
	q := r.URL.Query()
	var f filter
	for _, raw := range q["sport"] {
		for _, sport := range strings.Split(raw, ",") {
			if sport = strings.TrimSpace(sport); sport != "" {
				f.sports = append(f.sports, sport)
			}
		}
	}
	period, err := times.ParsePeriod(q.Get("period"))
	if err != nil {
		return filter{}, err
	}
	f.period = period
	if raw := q.Get("back"); raw != "" {
		back, err := strconv.Atoi(raw)
		if err != nil || back < 0 {
			return filter{}, badRequest("invalid back %q", raw)
		}
		f.back = back
	}
	return f, nil
}

// parseFloats reads a comma separated list of numbers from the query string.
func parseFloats(r *http.Request, name string) ([]float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	var out []float64
	for _, part := range strings.Split(raw, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, badRequest("invalid %s %q", name, part)
		}
		out = append(out, v)
	}
	return out, nil
}

// handleListActivities returns the summaries matching the filter, in list
// order.
func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.mu.Lock()
	list := []activity.Unloaded{}
	for a := range s.list.Filtered(f.sports, f.period, s.now(), f.back) {
		list = append(list, a)
	}
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, envelope{"activities": list})
}

// handleGetActivity returns one activity with its statistics.
func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	id, err := activityID(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.list.Get(id)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"activity": toActivityResponse(a, s.config.UnitSystem)})
}

// handleEditActivity applies an activity.EditParams payload.
func (s *Server) handleEditActivity(w http.ResponseWriter, r *http.Request) {
	id, err := activityID(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	var params activity.EditParams
	if err := s.readJSON(r, &params); err != nil {
		s.errorJSON(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.list.Get(id)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	if err := a.Edit(params); err != nil {
		s.errorJSON(w, err)
		return
	}
	if err := s.list.Update(id); err != nil {
		s.errorJSON(w, err)
		return
	}
	if err := s.list.Save(); err != nil {
		s.errorJSON(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"activity": toActivityResponse(a, s.config.UnitSystem)})
}

// handleDeleteActivity removes an activity, its original file and its sync
// state.
func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := activityID(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.list.Get(id)
	if err != nil && !errors.Is(err, activities.ErrNotFound) {
		log.Printf("WARN: could not load activity %s before deleting it: %v", id, err)
	}
	if err := s.list.Remove(id); err != nil {
		s.errorJSON(w, err)
		return
	}
	if err := s.list.Save(); err != nil {
		s.errorJSON(w, err)
		return
	}
	if a != nil && a.OriginalName != "" {
		path := filepath.Join(s.config.TracksPath, filepath.Base(a.OriginalName))
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("WARN: could not remove original file %s: %v", path, err)
		}
	}
	if err := s.syncState.Forget(id); err != nil {
		log.Printf("WARN: could not forget sync state of %s: %v", id, err)
	} else if err := s.syncState.Commit(); err != nil {
		log.Printf("WARN: could not save sync state: %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleManualActivity creates a hand-entered activity.
func (s *Server) handleManualActivity(w http.ResponseWriter, r *http.Request) {
	var req ManualRequest
	if err := s.readJSON(r, &req); err != nil {
		s.errorJSON(w, err)
		return
	}
	switch {
	case req.StartTime.IsZero():
		s.errorJSON(w, badRequest("start_time is required"))
		return
	case req.Distance < 0:
		s.errorJSON(w, badRequest("distance must not be negative"))
		return
	case req.Duration <= 0:
		s.errorJSON(w, badRequest("duration must be positive"))
		return
	}
	if req.Name == "" {
		req.Name = "Manual activity"
	}
	if req.Sport == "" {
		req.Sport = activity.Other
	}

	rec := &track.ManualTrack{
		Start:    req.StartTime,
		Distance: req.Distance,
		Climb:    req.Climb,
		Elapsed:  time.Duration(req.Duration * float64(time.Second)),
	}
	a := activity.New(req.Name, req.Sport, rec, "")
	s.addActivity(w, a)
}

// handleSendActivity accepts a full activity record sent from another
// server. The record keeps its id so the same activity is never added
// twice.
func (s *Server) handleSendActivity(w http.ResponseWriter, r *http.Request) {
	var rec activity.Record
	if err := s.readJSON(r, &rec); err != nil {
		s.errorJSON(w, err)
		return
	}
	if rec.Server == "" || rec.Username == "" {
		s.errorJSON(w, badRequest("server and username are required for sent activities"))
		return
	}
	a, err := activity.FromRecord(rec, s.trackOptions()...)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	s.addActivity(w, a)
}

// addActivity adds a to the list and responds with it.
func (s *Server) addActivity(w http.ResponseWriter, a *activity.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.list.ByID(a.ID); err == nil {
		s.errorJSON(w, errors.New("activity already exists"), http.StatusConflict)
		return
	}
	if err := s.list.Add(a); err != nil {
		s.errorJSON(w, err)
		return
	}
	if err := s.list.Save(); err != nil {
		s.errorJSON(w, err)
		return
	}
	log.Printf("INFO: Added activity %s (%s)", a.ID, a.Name)
	s.writeJSON(w, http.StatusCreated, envelope{"activity": toActivityResponse(a, s.config.UnitSystem)})
}
