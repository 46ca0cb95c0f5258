package track

import (
	"math"
	"slices"
	"time"
)

// Effort is the fastest section of a track covering at least Distance.
// First and Last are the point indices bounding the section.
type Effort struct {
	Distance float64       `json:"distance"`
	Time     time.Duration `json:"time"`
	Speed    float64       `json:"speed"`
	First    int           `json:"first"`
	Last     int           `json:"last"`
}

// Curve finds the best effort for each target distance. Targets that are not
// positive or exceed the track length are omitted. The result is ordered by
// ascending distance.
func (t *Track) Curve(distances []float64) ([]Effort, error) {
	if !t.Contains(Dist) {
		return nil, nil
	}
	dist, err := t.Get(Dist)
	if err != nil {
		return nil, err
	}
	length := t.Length()
	targets := make([]float64, 0, len(distances))
	for _, d := range distances {
		if d > 0 && d <= length {
			targets = append(targets, d)
		}
	}
	slices.Sort(targets)
	targets = slices.Compact(targets)
	if len(targets) == 0 {
		return nil, nil
	}

	var points []int
	for i, d := range dist {
		if !math.IsNaN(d) {
			points = append(points, i)
		}
	}
	stamps := t.fields[Time]
	floor := minInterval(stamps)

	efforts := make([]Effort, len(targets))
	// Largest first; each window also covers every shorter target.
	var seed *window
	for k := len(targets) - 1; k >= 0; k-- {
		w, ok := bestWindow(dist, stamps, points, targets[k], floor, seed)
		if !ok {
			efforts = slices.Delete(efforts, k, k+1)
			continue
		}
		seed = &w
		speed := 0.0
		if w.elapsed > 0 {
			speed = targets[k] / w.elapsed
		}
		efforts[k] = Effort{
			Distance: targets[k],
			Time:     seconds(w.elapsed),
			Speed:    speed,
			First:    w.first,
			Last:     w.last,
		}
	}
	return efforts, nil
}

// EffortRoute returns the [lat, lon] points from the first to the last point
// of e, or nil without position data.
func (t *Track) EffortRoute(e Effort) [][2]float64 {
	dist, err := t.Get(Dist)
	if err != nil || e.First < 0 || e.Last >= len(dist) || e.First > e.Last {
		return nil
	}
	return t.PartLatLonList(dist[e.First], math.Nextafter(dist[e.Last], math.Inf(1)))
}

type window struct {
	first, last int
	elapsed     float64
}

// bestWindow runs a two-pointer search over the valid points for the
// shortest time window whose distance is at least target. Ties keep the
// earliest window found; seed, if given, is the initial best.
func bestWindow(dist, stamps Series, points []int, target, floor float64, seed *window) (window, bool) {
	best := window{elapsed: math.Inf(1)}
	if seed != nil {
		best = *seed
	}
	if best.elapsed <= floor {
		return best, true
	}
	found := seed != nil
	lo := 0
	for hi := 1; hi < len(points); hi++ {
		last := points[hi]
		if dist[last]-dist[points[0]] < target {
			continue
		}
		for lo+1 < hi && dist[last]-dist[points[lo+1]] >= target {
			lo++
		}
		first := points[lo]
		elapsed := stamps[last] - stamps[first]
		if elapsed < best.elapsed {
			best = window{first: first, last: last, elapsed: elapsed}
			found = true
			if elapsed <= floor {
				break
			}
		}
	}
	return best, found
}

// minInterval returns the shortest positive gap between consecutive samples,
// the lower bound on any window's duration.
func minInterval(stamps Series) float64 {
	m := math.Inf(1)
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i] - stamps[i-1]; gap > 0 && gap < m {
			m = gap
		}
	}
	if math.IsInf(m, 1) {
		return 0
	}
	return m
}
