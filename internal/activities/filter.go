package activities

import (
	"iter"
	"slices"
	"time"

	"github.com/intermernet/activate/internal/activity"
	"github.com/intermernet/activate/internal/times"
)

// Filtered yields, in list order, the activities whose sport is in sports
// and which fall back periods before the one containing now. An empty sports
// list matches every sport. Period "all time" ignores back.
func (l *List) Filtered(sports []string, period times.Period, now time.Time, back int) iter.Seq[activity.Unloaded] {
	return func(yield func(activity.Unloaded) bool) {
		for _, a := range l.summaries {
			if len(sports) > 0 && !slices.Contains(sports, a.Sport) {
				continue
			}
			if period != times.AllTime {
				diff, err := times.PeriodDifference(now, a.StartTime, period)
				if err != nil || diff != back {
					continue
				}
			}
			if !yield(a) {
				return
			}
		}
	}
}

// TotalDistance sums the distance of the activities.
func TotalDistance(acts iter.Seq[activity.Unloaded]) float64 {
	total := 0.0
	for a := range acts {
		total += a.Distance
	}
	return total
}

// TotalTime sums the duration of the activities.
func TotalTime(acts iter.Seq[activity.Unloaded]) time.Duration {
	var total time.Duration
	for a := range acts {
		total += a.Duration
	}
	return total
}

// TotalActivities counts the activities.
func TotalActivities(acts iter.Seq[activity.Unloaded]) int {
	n := 0
	for range acts {
		n++
	}
	return n
}

// TotalClimb sums the climb of the activities, skipping unknown climbs.
func TotalClimb(acts iter.Seq[activity.Unloaded]) float64 {
	total := 0.0
	for a := range acts {
		if a.Climb != nil {
			total += *a.Climb
		}
	}
	return total
}

// Totals groups the reductions over one filtered set.
type Totals struct {
	Distance   float64       `json:"distance"`
	Time       time.Duration `json:"time"`
	Activities int           `json:"activities"`
	Climb      float64       `json:"climb"`
}

// TotalsOf computes every total in one pass.
func TotalsOf(acts iter.Seq[activity.Unloaded]) Totals {
	all := slices.Collect(acts)
	seq := slices.Values(all)
	return Totals{
		Distance:   TotalDistance(seq),
		Time:       TotalTime(seq),
		Activities: TotalActivities(seq),
		Climb:      TotalClimb(seq),
	}
}

func sortedByStart(acts iter.Seq[activity.Unloaded]) []activity.Unloaded {
	return slices.SortedStableFunc(acts, func(a, b activity.Unloaded) int {
		return a.StartTime.Compare(b.StartTime)
	})
}

// Key extracts the quantity a progression accumulates.
type Key func(activity.Unloaded) float64

// Progression keys.
var (
	ByDistance   Key = func(a activity.Unloaded) float64 { return a.Distance }
	ByTime       Key = func(a activity.Unloaded) float64 { return a.Duration.Seconds() }
	ByActivities Key = func(activity.Unloaded) float64 { return 1 }
	ByClimb      Key = func(a activity.Unloaded) float64 {
		if a.Climb == nil {
			return 0
		}
		return *a.Climb
	}
)

// Series is a cumulative step function.
type Series struct {
	Times  []time.Time `json:"times"`
	Values []float64   `json:"values"`
}

func (s *Series) add(t time.Time, v float64) {
	s.Times = append(s.Times, t)
	s.Values = append(s.Values, v)
}

// Progression is a set of cumulative series, oldest first. Periods names
// each series; it is nil for "all time".
type Progression struct {
	Periods []string `json:"periods,omitempty"`
	Series  []Series `json:"series"`
}

// ProgressionPeriods is how many periods ProgressionData compares.
const ProgressionPeriods = 5

// ProgressionData builds the running total of key over time. Each activity
// adds a flat point at its start and a risen point at its end. For periods
// other than "all time", up to ProgressionPeriods recent periods are shifted
// onto times.Epoch so they overlay, and periods with no activities are
// omitted.
func (l *List) ProgressionData(sports []string, period times.Period, now time.Time, key Key) (Progression, error) {
	if period == times.AllTime {
		var s Series
		total := 0.0
		acts := sortedByStart(l.Filtered(sports, period, now, 0))
		for _, a := range acts {
			s.add(a.StartTime, total)
			total += key(a)
			s.add(a.StartTime.Add(a.Duration), total)
		}
		if len(acts) > 0 {
			s.add(now, total)
		}
		return Progression{Series: []Series{s}}, nil
	}

	start, err := times.StartOf(times.Epoch, period)
	if err != nil {
		return Progression{}, err
	}
	end, err := times.EndOf(times.Epoch, period)
	if err != nil {
		return Progression{}, err
	}
	sinceStart := func(t time.Time) time.Time {
		d, _ := times.SinceStart(t, period)
		return start.Add(d)
	}

	var p Progression
	for back := range ProgressionPeriods {
		acts := sortedByStart(l.Filtered(sports, period, now, back))
		if len(acts) == 0 {
			continue
		}
		s := Series{Times: []time.Time{start}, Values: []float64{0}}
		total := 0.0
		for _, a := range acts {
			s.add(sinceStart(a.StartTime), total)
			total += key(a)
			s.add(sinceStart(a.StartTime.Add(a.Duration)), total)
		}
		if back == 0 {
			s.add(sinceStart(now), total)
		} else {
			s.add(end, total)
		}
		name, err := times.BackName(now, period, back)
		if err != nil {
			return Progression{}, err
		}
		p.Series = append(p.Series, s)
		p.Periods = append(p.Periods, name)
	}
	slices.Reverse(p.Series)
	slices.Reverse(p.Periods)
	return p, nil
}
