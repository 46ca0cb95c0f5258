// Package track stores the per-point samples of one recording and derives
// dependent fields and aggregate statistics from them on demand.
//
// A Track is not safe for concurrent use: derived fields and aggregates are
// cached on first access without locking.
package track

import (
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/intermernet/activate/internal/geometry"
	"github.com/intermernet/activate/internal/route"
)

const (
	// MovingSpeed is the speed in m/s above which an interval counts as moving.
	MovingSpeed = 0.2
	// minMovement is the smallest distance step, in metres, MovingTime considers.
	minMovement = 1.0
)

// interpolated are the fields whose gaps are filled at construction.
var interpolated = []Field{Lat, Lon, Time, Ele}

type aggregateKey struct {
	op    string
	field Field
}

// Track holds the raw fields of a recording plus everything derived from them.
type Track struct {
	n           int
	fields      map[Field]Series
	derived     map[Field]Series
	aggregates  map[aggregateKey]float64
	hasAltitude bool
	speedRange  int
	loc         *time.Location
}

// Option configures a Track.
type Option func(*Track)

// WithSpeedRange sets how many points either side of a point are used to
// compute its speed. Values below 1 are treated as 1.
func WithSpeedRange(n int) Option {
	return func(t *Track) {
		t.speedRange = max(n, 1)
	}
}

// WithLocation sets the time zone used for day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(t *Track) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// New builds a Track from raw extracted fields. Derived fields in the input
// are ignored. The input map and series are not retained.
func New(fields map[Field]Series, opts ...Option) (*Track, error) {
	t := &Track{
		n:          -1,
		fields:     make(map[Field]Series, len(fields)+1),
		derived:    make(map[Field]Series),
		aggregates: make(map[aggregateKey]float64),
		speedRange: 1,
		loc:        time.UTC,
	}
	for _, opt := range opts {
		opt(t)
	}

	for f, s := range fields {
		if computedOnly[f] {
			continue
		}
		if t.n < 0 {
			t.n = len(s)
		} else if len(s) != t.n {
			return nil, fmt.Errorf("%w: %s has %d points, expected %d", ErrLengthMismatch, f, len(s), t.n)
		}
		t.fields[f] = s.Clone()
	}
	if t.n <= 0 {
		return nil, fmt.Errorf("%w: track has no points", ErrMissingEssentialField)
	}
	if _, ok := t.fields[Time]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingEssentialField, Time)
	}
	_, hasLat := t.fields[Lat]
	_, hasLon := t.fields[Lon]
	if hasLat != hasLon {
		return nil, fmt.Errorf("%w: lat and lon must both be present", ErrMissingEssentialField)
	}
	if ele, ok := t.fields[Ele]; ok && ele.AllMissing() {
		delete(t.fields, Ele)
	}

	for _, f := range interpolated {
		s, ok := t.fields[f]
		if !ok {
			continue
		}
		if err := Interpolate(s); err != nil {
			if f == Lat || f == Lon {
				return nil, fmt.Errorf("%w: %s: %w", ErrMissingEssentialField, f, err)
			}
			return nil, fmt.Errorf("%s: %w", f, err)
		}
	}

	_, t.hasAltitude = t.fields[Ele]
	if !t.hasAltitude {
		t.fields[Ele] = make(Series, t.n)
	}
	return t, nil
}

// Len returns the number of points.
func (t *Track) Len() int { return t.n }

// HasAltitudeData reports whether elevation was recorded.
func (t *Track) HasAltitudeData() bool { return t.hasAltitude }

// HasPositionData reports whether latitude and longitude were recorded.
func (t *Track) HasPositionData() bool {
	_, ok := t.fields[Lat]
	return ok
}

// IsManual is always false for recorded tracks.
func (t *Track) IsManual() bool { return false }

// Location returns the time zone used for day boundaries.
func (t *Track) Location() *time.Location { return t.loc }

func (t *Track) lookup(f Field) (Series, bool) {
	if s, ok := t.fields[f]; ok {
		return s, true
	}
	s, ok := t.derived[f]
	return s, ok
}

// Contains reports whether f is stored or can be derived.
func (t *Track) Contains(f Field) bool {
	switch f {
	case Ele:
		return t.hasAltitude
	case Dist, DistToLast:
		_, ok := t.fields[Dist]
		return ok || t.HasPositionData()
	case Speed:
		_, ok := t.fields[Speed]
		return ok || t.Contains(Dist)
	case Gradient, Angle:
		return t.hasAltitude && t.Contains(Dist)
	}
	if altitudeFields[f] {
		return t.hasAltitude
	}
	_, ok := t.fields[f]
	return ok
}

// Get returns the full series for f, deriving and caching it if needed.
// The returned series is shared with the Track and must not be modified.
func (t *Track) Get(f Field) (Series, error) {
	if !t.Contains(f) {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, f)
	}
	if s, ok := t.lookup(f); ok {
		return s, nil
	}
	order, err := t.plan(f)
	if err != nil {
		return nil, err
	}
	p := params{speedRange: t.speedRange}
	for _, g := range order {
		r, _ := t.ruleFor(g)
		in := make(map[Field]Series, len(r.deps))
		for _, dep := range r.deps {
			in[dep], _ = t.lookup(dep)
		}
		t.derived[g] = r.compute(in, p)
	}
	s, _ := t.lookup(f)
	return s, nil
}

func (t *Track) aggregate(op string, f Field, compute func() (float64, error)) (float64, error) {
	key := aggregateKey{op: op, field: f}
	if v, ok := t.aggregates[key]; ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return 0, err
	}
	t.aggregates[key] = v
	return v, nil
}

func (t *Track) valid(f Field) ([]float64, error) {
	s, err := t.Get(f)
	if err != nil {
		return nil, err
	}
	values := s.Valid()
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyField, f)
	}
	return values, nil
}

// Average returns the mean of the present samples of f. The average speed is
// total length over elapsed time rather than the mean of point speeds.
func (t *Track) Average(f Field) (float64, error) {
	return t.aggregate("average", f, func() (float64, error) {
		if f == Speed {
			if !t.Contains(Dist) {
				return 0, fmt.Errorf("%w: %s", ErrMissingField, Dist)
			}
			elapsed := t.ElapsedTime().Seconds()
			if elapsed == 0 {
				return 0, fmt.Errorf("%w: zero elapsed time", ErrEmptyField)
			}
			return t.Length() / elapsed, nil
		}
		values, err := t.valid(f)
		if err != nil {
			return 0, err
		}
		return stat.Mean(values, nil), nil
	})
}

// Maximum returns the largest present sample of f.
func (t *Track) Maximum(f Field) (float64, error) {
	return t.aggregate("maximum", f, func() (float64, error) {
		values, err := t.valid(f)
		if err != nil {
			return 0, err
		}
		return floats.Max(values), nil
	})
}

func (t *Track) sum(f Field) (float64, bool) {
	if !t.hasAltitude {
		return 0, false
	}
	v, err := t.aggregate("sum", f, func() (float64, error) {
		s, err := t.Get(f)
		if err != nil {
			return 0, err
		}
		return floats.Sum(s.Valid()), nil
	})
	return v, err == nil
}

// Ascent returns the total climb. ok is false without altitude data.
func (t *Track) Ascent() (ascent float64, ok bool) { return t.sum(Climb) }

// Descent returns the total descent. ok is false without altitude data.
func (t *Track) Descent() (descent float64, ok bool) { return t.sum(Desc) }

// StartTime returns the time of the first point.
func (t *Track) StartTime() time.Time {
	return TimeOf(t.fields[Time][0]).In(t.loc)
}

// EndTime returns the time of the last point.
func (t *Track) EndTime() time.Time {
	return TimeOf(t.fields[Time][t.n-1]).In(t.loc)
}

// ElapsedTime returns the time between the first and last points.
func (t *Track) ElapsedTime() time.Duration {
	times := t.fields[Time]
	return seconds(times[t.n-1] - times[0])
}

// Times returns the timestamp of every point.
func (t *Track) Times() []time.Time {
	out := make([]time.Time, t.n)
	for i, v := range t.fields[Time] {
		out[i] = TimeOf(v).In(t.loc)
	}
	return out
}

// Length returns the last known cumulative distance, or 0 when distance
// cannot be derived.
func (t *Track) Length() float64 {
	v, err := t.aggregate("length", Dist, func() (float64, error) {
		dist, err := t.Get(Dist)
		if err != nil {
			return 0, err
		}
		for i := len(dist) - 1; i >= 0; i-- {
			if !math.IsNaN(dist[i]) {
				return dist[i], nil
			}
		}
		return 0, nil
	})
	if err != nil {
		return 0
	}
	return v
}

// MovingTime sums the intervals whose speed exceeds MovingSpeed. Steps of
// less than a metre are merged into the following interval.
func (t *Track) MovingTime() (time.Duration, error) {
	if !t.Contains(Dist) {
		return t.ElapsedTime(), nil
	}
	dist, err := t.Get(Dist)
	if err != nil {
		return 0, err
	}
	times := t.fields[Time]

	total := 0.0
	lastDist, lastTime := 0.0, times[0]
	for i := 1; i < t.n; i++ {
		d := dist[i]
		if math.IsNaN(d) {
			continue
		}
		if d < lastDist {
			return 0, fmt.Errorf("%w: distance decreases at point %d", ErrInconsistentTrack, i)
		}
		dt := times[i] - lastTime
		if dt == 0 || d-lastDist < minMovement {
			continue
		}
		if (d-lastDist)/dt > MovingSpeed {
			total += dt
		}
		lastDist, lastTime = d, times[i]
	}
	return seconds(total), nil
}

// AverageSpeed is Average(Speed) with errors reported as zero.
func (t *Track) AverageSpeed() float64 {
	v, err := t.Average(Speed)
	if err != nil {
		return 0
	}
	return v
}

// AverageSpeedMoving returns length over moving time.
func (t *Track) AverageSpeedMoving() (float64, error) {
	moving, err := t.MovingTime()
	if err != nil {
		return 0, err
	}
	if moving <= 0 {
		return 0, fmt.Errorf("%w: no moving time", ErrEmptyField)
	}
	return t.Length() / moving.Seconds(), nil
}

// LatLonList returns every point as a [lat, lon] pair, or nil without
// position data.
func (t *Track) LatLonList() [][2]float64 {
	if !t.HasPositionData() {
		return nil
	}
	lat, lon := t.fields[Lat], t.fields[Lon]
	out := make([][2]float64, t.n)
	for i := range out {
		out[i] = [2]float64{lat[i], lon[i]}
	}
	return out
}

// PartLatLonList returns the points whose cumulative distance lies in
// [minDist, maxDist).
func (t *Track) PartLatLonList(minDist, maxDist float64) [][2]float64 {
	if !t.HasPositionData() {
		return nil
	}
	dist, err := t.Get(Dist)
	if err != nil {
		return nil
	}
	lat, lon := t.fields[Lat], t.fields[Lon]
	var out [][2]float64
	for i, d := range dist {
		if math.IsNaN(d) || d < minDist {
			continue
		}
		if d >= maxDist {
			break
		}
		out = append(out, [2]float64{lat[i], lon[i]})
	}
	return out
}

// LatLonAtDistance interpolates the position at a cumulative distance. ok is
// false past the end of the track or without position data.
func (t *Track) LatLonAtDistance(distance float64) (lat, lon float64, ok bool) {
	if !t.HasPositionData() {
		return 0, 0, false
	}
	dist, err := t.Get(Dist)
	if err != nil {
		return 0, 0, false
	}
	lats, lons := t.fields[Lat], t.fields[Lon]
	p0, p1 := 0, -1
	for i, d := range dist {
		if math.IsNaN(d) {
			continue
		}
		if d > distance {
			p1 = i
			break
		}
		p0 = i
	}
	if p1 < 0 {
		return 0, 0, false
	}
	d0, d1 := dist[p0], dist[p1]
	if d0 == d1 {
		return lats[p0], lons[p0], true
	}
	ratio := (distance - d0) / (d1 - d0)
	return Lerp(lats[p0], lats[p1], ratio), Lerp(lons[p0], lons[p1], ratio), true
}

// Cartesian projects every point into the geocentric frame. Points whose
// position cannot be projected are skipped.
func (t *Track) Cartesian() []geometry.Point {
	if !t.HasPositionData() {
		return nil
	}
	lat, lon, ele := t.fields[Lat], t.fields[Lon], t.fields[Ele]
	out := make([]geometry.Point, 0, t.n)
	for i := range t.n {
		if p, ok := geometry.ToCartesian(lat[i], lon[i], ele[i]); ok {
			out = append(out, p)
		}
	}
	return out
}

// Match reports whether t and other follow the same route within tolerance
// metres.
func (t *Track) Match(other *Track, tolerance float64) bool {
	if other == nil || !t.HasPositionData() || !other.HasPositionData() {
		return false
	}
	return route.Matches(t.Cartesian(), other.Cartesian(), tolerance)
}

// Axis is one axis of a graph.
type Axis struct {
	Field     Field  `json:"field"`
	Dimension string `json:"dimension"`
	Values    Series `json:"values"`
}

// Graph returns the y field plotted against the x field.
func (t *Track) Graph(y, x Field) (xAxis, yAxis Axis, err error) {
	xs, err := t.Get(x)
	if err != nil {
		return Axis{}, Axis{}, err
	}
	ys, err := t.Get(y)
	if err != nil {
		return Axis{}, Axis{}, err
	}
	return Axis{Field: x, Dimension: string(FieldDimensions[x]), Values: xs},
		Axis{Field: y, Dimension: string(FieldDimensions[y]), Values: ys}, nil
}

// SaveData returns the fields worth persisting: everything recorded, but no
// derived fields and no placeholder elevation.
func (t *Track) SaveData() map[Field]Series {
	out := make(map[Field]Series, len(t.fields))
	for f, s := range t.fields {
		if f == Ele && !t.hasAltitude {
			continue
		}
		out[f] = s.Clone()
	}
	return out
}

// Fields returns the names of the recorded fields in a stable order.
func (t *Track) Fields() []Field {
	out := make([]Field, 0, len(t.fields))
	for f := range t.fields {
		if f == Ele && !t.hasAltitude {
			continue
		}
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}
