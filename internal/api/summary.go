package api

import (
	"net/http"
	"slices"

	"github.com/intermernet/activate/internal/activities"
	"github.com/intermernet/activate/internal/activity"
	"github.com/intermernet/activate/internal/units"
)

var progressionKeys = map[string]activities.Key{
	"distance":   activities.ByDistance,
	"time":       activities.ByTime,
	"activities": activities.ByActivities,
	"climb":      activities.ByClimb,
}

// handleTotals returns distance, time, count and climb of the filtered
// activities.
func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.mu.Lock()
	totals := activities.TotalsOf(s.list.Filtered(f.sports, f.period, s.now(), f.back))
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, envelope{"totals": totals})
}

// handleProgression returns running totals of 'key' (default distance)
// for the recent periods.
func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	name := r.URL.Query().Get("key")
	if name == "" {
		name = "distance"
	}
	key, ok := progressionKeys[name]
	if !ok {
		s.errorJSON(w, badRequest("unknown progression key %q", name))
		return
	}

	s.mu.Lock()
	progression, err := s.list.ProgressionData(f.sports, f.period, s.now(), key)
	s.mu.Unlock()
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"key": name, "progression": progression})
}

// handleRecords returns the fastest effort over each distance across the
// filtered activities. Without 'distances' the usual distances of the
// selected sports are used.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	distances, err := parseFloats(r, "distances")
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	if distances == nil {
		sports := f.sports
		if len(sports) == 0 {
			sports = []string{""}
		}
		for _, sport := range sports {
			distances = append(distances, activity.SpecialDistances(sport)...)
		}
		slices.Sort(distances)
		distances = slices.Compact(distances)
	}

	s.mu.Lock()
	records, err := s.list.Records(f.sports, f.period, s.now(), distances, s.progress(r, "records"))
	s.mu.Unlock()
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"records": records})
}

// handleEddington returns the daily distances of the filtered activities
// and their Eddington number in the configured distance unit.
func (s *Server) handleEddington(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.mu.Lock()
	days, err := s.list.Eddington(s.list.Filtered(f.sports, f.period, s.now(), f.back), s.progress(r, "eddington"))
	s.mu.Unlock()
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	if days == nil {
		days = []float64{}
	}
	unit := s.config.UnitSystem.Units[units.Distance]
	s.writeJSON(w, http.StatusOK, envelope{"eddington": EddingtonResponse{
		Days:   days,
		Number: activities.EddingtonNumber(days, unit.Size),
		Unit:   unit.Symbol,
	}})
}

// handleRoutes returns the routes of the filtered activities as lists of
// [lat, lon] pairs.
func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.mu.Lock()
	routes, err := s.list.AllRoutes(f.sports, f.period, s.now(), s.progress(r, "routes"))
	s.mu.Unlock()
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	if routes == nil {
		routes = [][][2]float64{}
	}
	s.writeJSON(w, http.StatusOK, envelope{"routes": routes})
}

// handlePhotos returns the photos of the filtered activities.
func (s *Server) handlePhotos(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.mu.Lock()
	photos, err := s.list.AllPhotos(f.sports, f.period, s.now())
	s.mu.Unlock()
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	if photos == nil {
		photos = []string{}
	}
	s.writeJSON(w, http.StatusOK, envelope{"photos": photos})
}
