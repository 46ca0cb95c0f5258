package track

import (
	"math"
	"slices"
	"time"

	"github.com/intermernet/activate/internal/times"
)

// Split describes one fixed-length section of a track.
type Split struct {
	Time       time.Duration `json:"time"`
	Elapsed    time.Duration `json:"elapsed"`
	Speed      float64       `json:"speed"`
	NetClimb   float64       `json:"net_climb"`
	TotalClimb float64       `json:"total_climb"`
}

// Splits partitions the track into sections of length metres. A split ends
// at the first point whose cumulative distance passes the next multiple of
// length. A trailing partial section is not reported.
func (t *Track) Splits(length float64) []Split {
	if length <= 0 || !t.Contains(Dist) {
		return nil
	}
	dist, err := t.Get(Dist)
	if err != nil {
		return nil
	}
	var climb Series
	if t.hasAltitude {
		climb, _ = t.Get(Climb)
	}
	times, ele := t.fields[Time], t.fields[Ele]

	var splits []Split
	lastTime, lastAlt := times[0], ele[0]
	totalClimb := 0.0
	for i := range t.n {
		if math.IsNaN(dist[i]) {
			continue
		}
		if climb != nil && !math.IsNaN(climb[i]) {
			totalClimb += climb[i]
		}
		if int(math.Floor(dist[i]/length)) <= len(splits) {
			continue
		}
		dt := times[i] - lastTime
		speed := 0.0
		if dt > 0 {
			speed = length / dt
		}
		splits = append(splits, Split{
			Time:       seconds(dt),
			Elapsed:    seconds(times[i] - times[0]),
			Speed:      speed,
			NetClimb:   ele[i] - lastAlt,
			TotalClimb: totalClimb,
		})
		totalClimb = 0
		lastTime, lastAlt = times[i], ele[i]
	}
	return splits
}

// ZoneDuration is the amount of the count field spent in one zone.
type ZoneDuration struct {
	Zone   float64 `json:"zone"`
	Amount float64 `json:"amount"`
}

// ZoneDurations attributes half the count field delta across each point's
// neighbours to the highest zone its field value exceeds. Values at or below
// the lowest zone are not counted. The result is ordered by ascending zone.
func (t *Track) ZoneDurations(zones []float64, field, countField Field) ([]ZoneDuration, error) {
	values, err := t.Get(field)
	if err != nil {
		return nil, err
	}
	counts, err := t.Get(countField)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(zones)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	buckets := make([]float64, len(sorted))

	for i := range t.n {
		value := values[i]
		if math.IsNaN(value) {
			continue
		}
		first, last := nearby(t.n, i, 1)
		amount := (counts[last] - counts[first]) / 2
		if math.IsNaN(amount) {
			continue
		}
		for z := len(sorted) - 1; z >= 0; z-- {
			if value > sorted[z] {
				buckets[z] += amount
				break
			}
		}
	}

	out := make([]ZoneDuration, len(sorted))
	for i, zone := range sorted {
		out[i] = ZoneDuration{Zone: zone, Amount: buckets[i]}
	}
	return out, nil
}

// DayFormat is the key layout of DistanceInDays.
const DayFormat = "2006-01-02"

// DistanceInDays attributes the distance covered to calendar days in the
// track's location. Intervals spanning midnight are split assuming constant
// speed across the interval.
func (t *Track) DistanceInDays() map[string]float64 {
	start, end := t.StartTime(), t.EndTime()
	if start.Format(DayFormat) == end.Format(DayFormat) || !t.Contains(DistToLast) {
		return map[string]float64{start.Format(DayFormat): t.Length()}
	}
	dtl, err := t.Get(DistToLast)
	if err != nil {
		return map[string]float64{start.Format(DayFormat): t.Length()}
	}

	stamps := t.Times()
	lastTime := start
	lastDay, _ := times.StartOf(start, times.Day)
	totals := map[string]float64{lastDay.Format(DayFormat): 0}
	for i := 1; i < t.n; i++ {
		d := dtl[i]
		if math.IsNaN(d) {
			continue
		}
		now := stamps[i]
		day, _ := times.StartOf(now, times.Day)
		if day.Equal(lastDay) {
			totals[lastDay.Format(DayFormat)] += d
			lastTime = now
			continue
		}
		speed := 0.0
		if dt := now.Sub(lastTime).Seconds(); dt > 0 {
			speed = d / dt
		}
		endOfLast, _ := times.EndOf(lastTime, times.Day)
		totals[lastDay.Format(DayFormat)] += speed * endOfLast.Sub(lastTime).Seconds()
		for between := endOfLast; between.Before(day); between = between.AddDate(0, 0, 1) {
			next := between.AddDate(0, 0, 1)
			totals[between.Format(DayFormat)] += speed * next.Sub(between).Seconds()
		}
		totals[day.Format(DayFormat)] += speed * now.Sub(day).Seconds()
		lastDay, lastTime = day, now
	}
	return totals
}
