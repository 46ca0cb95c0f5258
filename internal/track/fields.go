package track

import (
	"fmt"
	"math"

	"github.com/intermernet/activate/internal/geometry"
	"github.com/intermernet/activate/internal/units"
)

// Field names one per-point data series.
type Field string

// Raw fields, as produced by the file extractors.
const (
	Lat       Field = "lat"
	Lon       Field = "lon"
	Ele       Field = "ele"
	Time      Field = "time"
	Speed     Field = "speed"
	Dist      Field = "dist"
	HeartRate Field = "heartrate"
	Cadence   Field = "cadence"
	Power     Field = "power"
)

// Derived fields.
const (
	DistToLast    Field = "dist_to_last"
	HeightChange  Field = "height_change"
	Climb         Field = "climb"
	Desc          Field = "desc"
	VerticalSpeed Field = "vertical_speed"
	Gradient      Field = "gradient"
	Angle         Field = "angle"
)

// FieldDimensions gives the physical dimension of every known field.
var FieldDimensions = map[Field]units.Dimension{
	Lat:           units.LatLon,
	Lon:           units.LatLon,
	Ele:           units.Altitude,
	Time:          units.Time,
	Speed:         units.Speed,
	Dist:          units.Distance,
	DistToLast:    units.Distance,
	HeartRate:     units.HeartRate,
	Cadence:       units.Cadence,
	Power:         units.Power,
	HeightChange:  units.Altitude,
	Climb:         units.Altitude,
	Desc:          units.Altitude,
	VerticalSpeed: units.VerticalSpeed,
	Gradient:      units.Dimensionless,
	Angle:         units.Angle,
}

// altitudeFields can only be derived when the track carries elevation data.
var altitudeFields = map[Field]bool{
	HeightChange:  true,
	Climb:         true,
	Desc:          true,
	VerticalSpeed: true,
	Gradient:      true,
	Angle:         true,
}

// computedOnly are the fields that are never recorded. Supplied values are
// discarded and recomputed from the raw fields.
var computedOnly = map[Field]bool{
	DistToLast:    true,
	HeightChange:  true,
	Climb:         true,
	Desc:          true,
	VerticalSpeed: true,
	Gradient:      true,
	Angle:         true,
}

// params are the track-level settings a derivation may depend on.
type params struct {
	speedRange int
}

// rule derives one field from its dependencies. compute must not modify its
// inputs.
type rule struct {
	deps    []Field
	compute func(in map[Field]Series, p params) Series
}

var (
	distToLastFromDist = rule{
		deps: []Field{Dist},
		compute: func(in map[Field]Series, _ params) Series {
			dist := in[Dist]
			return diff(dist)
		},
	}
	distToLastFromPosition = rule{
		deps: []Field{Lat, Lon, Ele},
		compute: func(in map[Field]Series, _ params) Series {
			lat, lon, ele := in[Lat], in[Lon], in[Ele]
			out := make(Series, len(lat))
			var prev geometry.Point
			prevOK := false
			for i := range lat {
				p, ok := geometry.ToCartesian(lat[i], lon[i], ele[i])
				switch {
				case i == 0 || !ok || !prevOK:
					out[i] = math.NaN()
				default:
					out[i] = p.Distance(prev)
				}
				prev, prevOK = p, ok
			}
			return out
		},
	}
)

// rules is the static derivation table for every field except dist_to_last,
// whose source depends on whether raw cumulative distance was recorded.
var rules = map[Field]rule{
	Dist: {
		deps: []Field{DistToLast},
		compute: func(in map[Field]Series, _ params) Series {
			dtl := in[DistToLast]
			out := make(Series, len(dtl))
			total := 0.0
			for i, d := range dtl {
				if i > 0 && !math.IsNaN(d) {
					total += d
				}
				out[i] = total
			}
			return out
		},
	},
	Speed: {
		deps: []Field{Time, DistToLast},
		compute: func(in map[Field]Series, p params) Series {
			times, dtl := in[Time], in[DistToLast]
			n := len(times)
			out := make(Series, n)
			for i := range out {
				first, last := nearby(n, i, p.speedRange)
				dt := times[last] - times[first]
				distance := 0.0
				for k := first + 1; k <= last; k++ {
					if !math.IsNaN(dtl[k]) {
						distance += dtl[k]
					}
				}
				switch {
				case dt != 0:
					out[i] = distance / dt
				case i > 0:
					out[i] = out[i-1]
				default:
					out[i] = 0
				}
			}
			return out
		},
	},
	HeightChange: {
		deps: []Field{Ele},
		compute: func(in map[Field]Series, _ params) Series {
			return diff(in[Ele])
		},
	},
	Climb: {
		deps: []Field{HeightChange},
		compute: func(in map[Field]Series, _ params) Series {
			return mapValid(in[HeightChange], func(h float64) float64 { return math.Max(h, 0) })
		},
	},
	Desc: {
		deps: []Field{HeightChange},
		compute: func(in map[Field]Series, _ params) Series {
			return mapValid(in[HeightChange], func(h float64) float64 { return math.Max(-h, 0) })
		},
	},
	VerticalSpeed: {
		deps: []Field{HeightChange, Time},
		compute: func(in map[Field]Series, _ params) Series {
			hc, times := in[HeightChange], in[Time]
			out := make(Series, len(hc))
			for i := range hc {
				if i == 0 {
					out[i] = math.NaN()
					continue
				}
				dt := times[i] - times[i-1]
				if math.IsNaN(hc[i]) || math.IsNaN(dt) || dt == 0 {
					out[i] = math.NaN()
					continue
				}
				out[i] = hc[i] / dt
			}
			return out
		},
	},
	Gradient: {
		deps: []Field{DistToLast, HeightChange},
		compute: func(in map[Field]Series, _ params) Series {
			dtl, hc := in[DistToLast], in[HeightChange]
			out := make(Series, len(dtl))
			for i := range dtl {
				if i == 0 || math.IsNaN(dtl[i]) || dtl[i] == 0 || math.IsNaN(hc[i]) {
					out[i] = math.NaN()
					continue
				}
				out[i] = hc[i] / dtl[i]
			}
			return out
		},
	},
	Angle: {
		deps: []Field{Gradient},
		compute: func(in map[Field]Series, _ params) Series {
			return mapValid(in[Gradient], math.Atan)
		},
	},
}

// diff returns successive differences, missing for the first point and
// wherever either neighbour is missing.
func diff(s Series) Series {
	out := make(Series, len(s))
	for i := range s {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = s[i] - s[i-1]
	}
	return out
}

func mapValid(s Series, f func(float64) float64) Series {
	out := make(Series, len(s))
	for i, v := range s {
		if math.IsNaN(v) {
			out[i] = v
		} else {
			out[i] = f(v)
		}
	}
	return out
}

// nearby returns the index window [first, last] of at most number points
// either side of position, clipped to [0, length).
func nearby(length, position, number int) (first, last int) {
	first = max(position-number, 0)
	last = min(position+number, length-1)
	return first, last
}

// ruleFor returns how a field is derived on this track.
func (t *Track) ruleFor(f Field) (rule, bool) {
	if f == DistToLast {
		if _, ok := t.fields[Dist]; ok {
			return distToLastFromDist, true
		}
		if t.HasPositionData() {
			return distToLastFromPosition, true
		}
		return rule{}, false
	}
	r, ok := rules[f]
	return r, ok
}

// plan returns the fields that must be computed, dependencies first, to
// resolve f. Fields already stored or cached are not included.
func (t *Track) plan(f Field) ([]Field, error) {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[Field]int)
	var order []Field

	var visit func(g Field) error
	visit = func(g Field) error {
		if _, ok := t.lookup(g); ok {
			return nil
		}
		switch state[g] {
		case visiting:
			return fmt.Errorf("%w: %s", ErrDependencyCycle, g)
		case done:
			return nil
		}
		r, ok := t.ruleFor(g)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingField, g)
		}
		state[g] = visiting
		for _, dep := range r.deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[g] = done
		order = append(order, g)
		return nil
	}

	if err := visit(f); err != nil {
		return nil, err
	}
	return order, nil
}
