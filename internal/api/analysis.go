package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/intermernet/activate/internal/activity"
	"github.com/intermernet/activate/internal/track"
	"github.com/intermernet/activate/internal/units"
)

// recordedTrack loads the activity in the URL and returns its recorded
// track. The caller must hold s.mu.
func (s *Server) recordedTrack(r *http.Request) (*activity.Activity, *track.Track, error) {
	id, err := activityID(r)
	if err != nil {
		return nil, nil, err
	}
	a, err := s.list.Get(id)
	if err != nil {
		return nil, nil, err
	}
	t, ok := a.Track.(*track.Track)
	if !ok {
		return nil, nil, fmt.Errorf("%w: activity %s has no recorded track", track.ErrMissingField, id)
	}
	return a, t, nil
}

// handleCurve returns the fastest effort over each requested distance, in
// metres. Without 'distances' the sport's usual distances are used.
func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	distances, err := parseFloats(r, "distances")
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, t, err := s.recordedTrack(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	if distances == nil {
		distances = activity.SpecialDistances(a.Sport)
	}
	efforts, err := t.Curve(distances)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	resp := make([]EffortResponse, len(efforts))
	for i, e := range efforts {
		resp[i] = EffortResponse{Effort: e, Route: t.EffortRoute(e)}
	}
	s.writeJSON(w, http.StatusOK, envelope{"efforts": resp})
}

// handleSplits returns the splits of an activity, with the position of
// each split's end where the track has one. 'length' is in metres and
// defaults to one distance unit of the configured system.
func (s *Server) handleSplits(w http.ResponseWriter, r *http.Request) {
	length := s.config.UnitSystem.Decode(1, units.Distance)
	if raw := r.URL.Query().Get("length"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			s.errorJSON(w, badRequest("invalid length %q", raw))
			return
		}
		length = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, t, err := s.recordedTrack(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	splits := t.Splits(length)
	if splits == nil {
		splits = []track.Split{}
	}
	markers := [][2]float64{}
	for k := range splits {
		if lat, lon, ok := t.LatLonAtDistance(float64(k+1) * length); ok {
			markers = append(markers, [2]float64{lat, lon})
		}
	}
	s.writeJSON(w, http.StatusOK, envelope{"length": length, "splits": splits, "markers": markers})
}

// handleZones returns how much of 'count' (default time) was spent in
// each zone of 'field' (default speed). Zones are given in display units
// of the configured system; speed zones default to the sport's usual ones.
func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field := track.Speed
	if raw := q.Get("field"); raw != "" {
		field = track.Field(raw)
	}
	count := track.Time
	if raw := q.Get("count"); raw != "" {
		count = track.Field(raw)
	}
	dimension, ok := track.FieldDimensions[field]
	if !ok {
		s.errorJSON(w, badRequest("unknown field %q", field))
		return
	}
	if _, ok := track.FieldDimensions[count]; !ok {
		s.errorJSON(w, badRequest("unknown field %q", count))
		return
	}
	zones, err := parseFloats(r, "zones")
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, t, err := s.recordedTrack(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	if zones == nil {
		if field != track.Speed {
			s.errorJSON(w, badRequest("zones are required for %s", field))
			return
		}
		zones = activity.SpeedZones(a.Sport)
	}
	for i, z := range zones {
		zones[i] = s.config.UnitSystem.Decode(z, dimension)
	}
	durations, err := t.ZoneDurations(zones, field, count)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"field": field, "count": count, "zones": durations})
}

// handleGraph returns two series of an activity for plotting, 'y'
// (default speed) against 'x' (default dist).
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	y, x := track.Speed, track.Dist
	if raw := q.Get("y"); raw != "" {
		y = track.Field(raw)
	}
	if raw := q.Get("x"); raw != "" {
		x = track.Field(raw)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, t, err := s.recordedTrack(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	xAxis, yAxis, err := t.Graph(y, x)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"x": xAxis, "y": yAxis})
}

// handleMatching returns the ids of activities following the same route,
// the activity itself first. 'tolerance' is in metres.
func (s *Server) handleMatching(w http.ResponseWriter, r *http.Request) {
	tolerance := s.config.MatchTolerance
	if raw := r.URL.Query().Get("tolerance"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			s.errorJSON(w, badRequest("invalid tolerance %q", raw))
			return
		}
		tolerance = v
	}
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
	ids, err := s.list.Matching(a, tolerance, s.progress(r, "matching"))
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	s.writeJSON(w, http.StatusOK, envelope{"tolerance": tolerance, "matching": ids})
}
