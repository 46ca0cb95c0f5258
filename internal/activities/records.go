package activities

import (
	"iter"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/intermernet/activate/internal/activity"
	"github.com/intermernet/activate/internal/times"
	"github.com/intermernet/activate/internal/track"
)

// Record is the fastest effort over one distance across many activities.
type Record struct {
	track.Effort
	ActivityID   uuid.UUID `json:"activity_id"`
	ActivityName string    `json:"activity_name"`
}

// Records finds, for each distance, the fastest effort among the
// activities in the current period. Manual activities have no efforts. The
// result is ordered by ascending distance.
func (l *List) Records(sports []string, period times.Period, now time.Time, distances []float64, progress Progress) ([]Record, error) {
	acts := slices.Collect(l.Filtered(sports, period, now, 0))
	best := make(map[float64]Record)
	for i, u := range acts {
		a, err := l.Get(u.ID)
		if err != nil {
			return nil, err
		}
		if t, ok := a.Track.(*track.Track); ok {
			efforts, err := t.Curve(distances)
			if err != nil {
				return nil, err
			}
			for _, e := range efforts {
				if r, seen := best[e.Distance]; !seen || e.Time < r.Time {
					best[e.Distance] = Record{Effort: e, ActivityID: a.ID, ActivityName: a.Name}
				}
			}
		}
		progress.report(i+1, len(acts))
	}

	out := make([]Record, 0, len(best))
	for _, d := range slices.Sorted(maps.Keys(best)) {
		out = append(out, best[d])
	}
	return out, nil
}

// Eddington returns the distance covered on each day with any activity,
// largest first.
func (l *List) Eddington(acts iter.Seq[activity.Unloaded], progress Progress) ([]float64, error) {
	all := slices.Collect(acts)
	days := make(map[string]float64)
	for i, u := range all {
		a, err := l.Get(u.ID)
		if err != nil {
			return nil, err
		}
		for day, d := range a.Track.DistanceInDays() {
			days[day] += d
		}
		progress.report(i+1, len(all))
	}
	totals := slices.Collect(maps.Values(days))
	slices.SortFunc(totals, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})
	return totals, nil
}

// EddingtonNumber returns the largest n such that n days each covered at
// least n units. days must be sorted largest first, as Eddington returns.
func EddingtonNumber(days []float64, unit float64) int {
	n := 0
	for i, d := range days {
		if d < float64(i+1)*unit {
			break
		}
		n = i + 1
	}
	return n
}

// MatchBand is the relative distance difference within which activities are
// compared route by route.
const MatchBand = 0.2

// Matching returns the ids of the activities, including a itself, of the
// same sport whose route matches a's within tolerance metres.
func (l *List) Matching(a *activity.Activity, tolerance float64, progress Progress) ([]uuid.UUID, error) {
	matches := []uuid.UUID{a.ID}
	t, ok := a.Track.(*track.Track)
	if !ok || !t.HasPositionData() {
		return matches, nil
	}

	var candidates []activity.Unloaded
	for _, u := range l.summaries {
		if u.ID == a.ID || u.Sport != a.Sport {
			continue
		}
		if math.Abs(u.Distance-a.Distance) > MatchBand*a.Distance {
			continue
		}
		candidates = append(candidates, u)
	}

	for i, u := range candidates {
		other, err := l.Get(u.ID)
		if err != nil {
			return nil, err
		}
		if ot, ok := other.Track.(*track.Track); ok && t.Match(ot, tolerance) {
			matches = append(matches, u.ID)
		}
		progress.report(i+1, len(candidates))
	}
	return matches, nil
}

// AllPhotos returns the photos of the activities in the current period.
func (l *List) AllPhotos(sports []string, period times.Period, now time.Time) ([]string, error) {
	var photos []string
	for u := range l.Filtered(sports, period, now, 0) {
		a, err := l.Get(u.ID)
		if err != nil {
			return nil, err
		}
		photos = append(photos, a.Photos...)
	}
	return photos, nil
}

// AllRoutes returns the routes of the activities in the current period
// that have position data.
func (l *List) AllRoutes(sports []string, period times.Period, now time.Time, progress Progress) ([][][2]float64, error) {
	acts := slices.Collect(l.Filtered(sports, period, now, 0))
	var routes [][][2]float64
	for i, u := range acts {
		a, err := l.Get(u.ID)
		if err != nil {
			return nil, err
		}
		if t, ok := a.Track.(*track.Track); ok && t.HasPositionData() {
			routes = append(routes, t.LatLonList())
		}
		progress.report(i+1, len(acts))
	}
	return routes, nil
}
