package track

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2024, time.March, 13, 9, 0, 0, 0, time.UTC)

func clock(offsets ...float64) Series {
	s := make(Series, len(offsets))
	for i, o := range offsets {
		s[i] = TimeValue(testStart) + o
	}
	return s
}

// flatTrack is four points 100 m apart, 60 s apart, on flat ground.
func flatTrack(t *testing.T) *Track {
	t.Helper()
	tr, err := New(map[Field]Series{
		Lat:  {0, 0.0009, 0.0018, 0.0027},
		Lon:  {0, 0, 0, 0},
		Ele:  {10, 10, 10, 10},
		Dist: {0, 100, 200, 300},
		Time: clock(0, 60, 120, 180),
	})
	require.NoError(t, err)
	return tr
}

func TestFlatTrackScenario(t *testing.T) {
	tr := flatTrack(t)

	speed, err := tr.Average(Speed)
	require.NoError(t, err)
	assert.InDelta(t, 300.0/180.0, speed, 1e-9)

	ascent, ok := tr.Ascent()
	require.True(t, ok)
	assert.Equal(t, 0.0, ascent)

	splits := tr.Splits(100)
	require.Len(t, splits, 3)
	for i, s := range splits {
		assert.Equal(t, 60*time.Second, s.Time)
		assert.Equal(t, time.Duration(i+1)*60*time.Second, s.Elapsed)
		assert.InDelta(t, 1.667, s.Speed, 1e-3)
		assert.Equal(t, 0.0, s.NetClimb)
		assert.Equal(t, 0.0, s.TotalClimb)
	}
}

func TestNewErrors(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		fields map[Field]Series
		want   error
	}{
		{
			name:   "length mismatch",
			fields: map[Field]Series{Time: clock(0, 1), Dist: {0}},
			want:   ErrLengthMismatch,
		},
		{
			name:   "missing time",
			fields: map[Field]Series{Dist: {0, 1}},
			want:   ErrMissingEssentialField,
		},
		{
			name:   "no points",
			fields: map[Field]Series{Time: {}},
			want:   ErrMissingEssentialField,
		},
		{
			name:   "lat without lon",
			fields: map[Field]Series{Time: clock(0, 1), Lat: {1, 2}},
			want:   ErrMissingEssentialField,
		},
		{
			name:   "all missing position",
			fields: map[Field]Series{Time: clock(0, 1), Lat: {nan, nan}, Lon: {nan, nan}},
			want:   ErrMissingEssentialField,
		},
		{
			name:   "all missing time",
			fields: map[Field]Series{Time: {nan, nan}},
			want:   ErrInterpolation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.fields)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewInterpolatesEssentialFields(t *testing.T) {
	nan := math.NaN()
	raw := Series{10, nan, 30}
	tr, err := New(map[Field]Series{
		Time:      clock(0, nan, 20),
		Ele:       raw,
		HeartRate: {nan, 2, nan},
	})
	require.NoError(t, err)

	ele, err := tr.Get(Ele)
	require.NoError(t, err)
	assert.Equal(t, Series{10, 20, 30}, ele)
	assert.True(t, Missing(raw[1]), "input must not be modified")

	hr, err := tr.Get(HeartRate)
	require.NoError(t, err)
	assert.True(t, Missing(hr[0]))
	assert.True(t, testStart.Add(10*time.Second).Equal(tr.Times()[1]))
}

func TestContains(t *testing.T) {
	t.Run("position track without altitude", func(t *testing.T) {
		tr, err := New(map[Field]Series{
			Lat:  {0, 0.001},
			Lon:  {0, 0},
			Time: clock(0, 10),
		})
		require.NoError(t, err)
		assert.True(t, tr.HasPositionData())
		assert.False(t, tr.HasAltitudeData())
		assert.True(t, tr.Contains(Dist))
		assert.True(t, tr.Contains(Speed))
		assert.False(t, tr.Contains(Ele))
		assert.False(t, tr.Contains(Climb))
		assert.False(t, tr.Contains(Gradient))
		assert.False(t, tr.Contains(HeartRate))

		_, ok := tr.Ascent()
		assert.False(t, ok)
		_, err = tr.Get(Climb)
		assert.ErrorIs(t, err, ErrMissingField)
		assert.NotContains(t, tr.SaveData(), Ele)
	})

	t.Run("pool swim", func(t *testing.T) {
		tr, err := New(map[Field]Series{
			Dist: {0, 25, 50},
			Time: clock(0, 30, 60),
		})
		require.NoError(t, err)
		assert.False(t, tr.HasPositionData())
		assert.True(t, tr.Contains(DistToLast))
		assert.True(t, tr.Contains(Speed))
		assert.Nil(t, tr.LatLonList())
		assert.False(t, tr.Match(tr, 100))
		assert.Equal(t, 50.0, tr.Length())
	})

	t.Run("time only", func(t *testing.T) {
		tr, err := New(map[Field]Series{Time: clock(0, 30)})
		require.NoError(t, err)
		assert.False(t, tr.Contains(Dist))
		assert.Equal(t, 0.0, tr.Length())
		moving, err := tr.MovingTime()
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, moving)
		_, err = tr.Average(Speed)
		assert.ErrorIs(t, err, ErrMissingField)
	})
}

func TestDerivedFields(t *testing.T) {
	tr, err := New(map[Field]Series{
		Dist: {0, 100, 200, 300},
		Ele:  {0, 10, 5, 5},
		Time: clock(0, 10, 20, 30),
	})
	require.NoError(t, err)

	hc, err := tr.Get(HeightChange)
	require.NoError(t, err)
	assert.True(t, Missing(hc[0]))
	assert.Equal(t, []float64{10, -5, 0}, []float64(hc[1:]))

	climb, err := tr.Get(Climb)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 0, 0}, []float64(climb[1:]))

	desc, err := tr.Get(Desc)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 5, 0}, []float64(desc[1:]))

	vs, err := tr.Get(VerticalSpeed)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, -0.5, 0}, []float64(vs[1:]), 1e-9)

	gradient, err := tr.Get(Gradient)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.1, -0.05, 0}, []float64(gradient[1:]), 1e-9)

	angle, err := tr.Get(Angle)
	require.NoError(t, err)
	assert.InDelta(t, math.Atan(0.1), angle[1], 1e-12)

	speed, err := tr.Get(Speed)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{10, 10, 10, 10}, []float64(speed), 1e-9)

	ascent, _ := tr.Ascent()
	descent, _ := tr.Descent()
	assert.Equal(t, 10.0, ascent)
	assert.Equal(t, 5.0, descent)

	maxSpeed, err := tr.Maximum(Speed)
	require.NoError(t, err)
	assert.InDelta(t, 10, maxSpeed, 1e-9)

	saved := tr.SaveData()
	assert.ElementsMatch(t, []Field{Dist, Ele, Time}, tr.Fields())
	assert.Len(t, saved, 3)
}

func TestGradientUndefinedWithoutDistance(t *testing.T) {
	tr, err := New(map[Field]Series{
		Dist: {0, 0, 10},
		Ele:  {0, 1, 2},
		Time: clock(0, 10, 20),
	})
	require.NoError(t, err)
	gradient, err := tr.Get(Gradient)
	require.NoError(t, err)
	assert.True(t, Missing(gradient[1]))
	assert.InDelta(t, 0.1, gradient[2], 1e-9)
}

func TestCartesianDistance(t *testing.T) {
	tr, err := New(map[Field]Series{
		Lat:  {0, 0.000904, 0.001808, 0.000904},
		Lon:  {0, 0, 0, 0},
		Time: clock(0, 30, 60, 90),
	})
	require.NoError(t, err)

	dtl, err := tr.Get(DistToLast)
	require.NoError(t, err)
	assert.True(t, Missing(dtl[0]))
	for _, d := range dtl[1:] {
		assert.InDelta(t, 100, d, 1)
	}

	dist, err := tr.Get(Dist)
	require.NoError(t, err)
	for i := 1; i < len(dist); i++ {
		assert.GreaterOrEqual(t, dist[i], dist[i-1])
	}

	moving, err := tr.MovingTime()
	require.NoError(t, err)
	assert.LessOrEqual(t, moving, tr.ElapsedTime())
}

func TestMovingTime(t *testing.T) {
	t.Run("stationary stretch", func(t *testing.T) {
		tr, err := New(map[Field]Series{
			Dist: {0, 100, 100, 100, 101.5},
			Time: clock(0, 60, 600, 1200, 1260),
		})
		require.NoError(t, err)
		moving, err := tr.MovingTime()
		require.NoError(t, err)
		assert.Equal(t, 60*time.Second, moving)
		assert.Equal(t, 1260*time.Second, tr.ElapsedTime())

		avg, err := tr.AverageSpeedMoving()
		require.NoError(t, err)
		assert.InDelta(t, 101.5/60, avg, 1e-9)
	})

	t.Run("decreasing distance", func(t *testing.T) {
		tr, err := New(map[Field]Series{
			Dist: {0, 100, 50},
			Time: clock(0, 60, 120),
		})
		require.NoError(t, err)
		_, err = tr.MovingTime()
		assert.ErrorIs(t, err, ErrInconsistentTrack)
	})
}

func TestAverageAndMaximum(t *testing.T) {
	nan := math.NaN()
	tr, err := New(map[Field]Series{
		Time:      clock(0, 1, 2, 3),
		HeartRate: {2, nan, 2.5, 3.5},
		Power:     {nan, nan, nan, nan},
	})
	require.NoError(t, err)

	avg, err := tr.Average(HeartRate)
	require.NoError(t, err)
	assert.InDelta(t, 8.0/3, avg, 1e-9)

	top, err := tr.Maximum(HeartRate)
	require.NoError(t, err)
	assert.Equal(t, 3.5, top)

	_, err = tr.Average(Power)
	assert.ErrorIs(t, err, ErrEmptyField)
	_, err = tr.Maximum(Cadence)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestZoneDurations(t *testing.T) {
	tr, err := New(map[Field]Series{
		Time:      clock(0, 60, 120, 180),
		HeartRate: {1, 2, 3, 4},
	})
	require.NoError(t, err)

	zones, err := tr.ZoneDurations([]float64{2.5, 0}, HeartRate, Time)
	require.NoError(t, err)
	assert.Equal(t, []ZoneDuration{{Zone: 0, Amount: 90}, {Zone: 2.5, Amount: 90}}, zones)
}

func TestDistanceInDays(t *testing.T) {
	t.Run("single day", func(t *testing.T) {
		tr := flatTrack(t)
		assert.Equal(t, map[string]float64{"2024-03-13": 300}, tr.DistanceInDays())
	})

	t.Run("across midnight", func(t *testing.T) {
		late := time.Date(2024, time.March, 13, 23, 0, 0, 0, time.UTC)
		tr, err := New(map[Field]Series{
			Dist: {0, 7200},
			Time: {TimeValue(late), TimeValue(late.Add(2 * time.Hour))},
		})
		require.NoError(t, err)
		days := tr.DistanceInDays()
		assert.InDelta(t, 3600, days["2024-03-13"], 1e-6)
		assert.InDelta(t, 3600, days["2024-03-14"], 1e-6)
	})

	t.Run("whole day in between", func(t *testing.T) {
		late := time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)
		tr, err := New(map[Field]Series{
			Dist: {0, 48 * 3600},
			Time: {TimeValue(late), TimeValue(late.Add(48 * time.Hour))},
		})
		require.NoError(t, err)
		days := tr.DistanceInDays()
		assert.InDelta(t, 12*3600, days["2024-03-13"], 1e-6)
		assert.InDelta(t, 24*3600, days["2024-03-14"], 1e-6)
		assert.InDelta(t, 12*3600, days["2024-03-15"], 1e-6)
	})
}

func TestLatLon(t *testing.T) {
	tr := flatTrack(t)

	lat, lon, ok := tr.LatLonAtDistance(150)
	require.True(t, ok)
	assert.InDelta(t, 0.00135, lat, 1e-9)
	assert.Equal(t, 0.0, lon)

	_, _, ok = tr.LatLonAtDistance(400)
	assert.False(t, ok)

	assert.Len(t, tr.LatLonList(), 4)
	assert.Equal(t, [][2]float64{{0.0009, 0}, {0.0018, 0}}, tr.PartLatLonList(100, 300))
}

func TestSaveDataRoundTrip(t *testing.T) {
	tr, err := New(map[Field]Series{
		Lat:  {0, 0.000904, 0.001808},
		Lon:  {0, 0.0001, 0.0002},
		Ele:  {5, 6, 4},
		Time: clock(0, 30, 60),
	})
	require.NoError(t, err)
	_, err = tr.Get(Gradient)
	require.NoError(t, err)

	saved := tr.SaveData()
	assert.NotContains(t, saved, Gradient)
	assert.NotContains(t, saved, Dist)

	again, err := New(saved)
	require.NoError(t, err)
	assert.InDelta(t, tr.Length(), again.Length(), 1e-9)
	a1, _ := tr.Ascent()
	a2, _ := again.Ascent()
	assert.Equal(t, a1, a2)
	assert.True(t, tr.StartTime().Equal(again.StartTime()))
}

func TestNewIgnoresDerivedFields(t *testing.T) {
	tr, err := New(map[Field]Series{
		Lat:      {0, 0.0009, 0.0018},
		Lon:      {0, 0, 0},
		Ele:      {10, 12, 11},
		Time:     clock(0, 30, 60),
		Climb:    {0, 50, 50},
		Gradient: {0, 1, 1},
		Angle:    {1, 2},
	})
	require.NoError(t, err, "derived fields take no part in the length check")

	assert.Equal(t, []Field{Ele, Lat, Lon, Time}, tr.Fields())
	saved := tr.SaveData()
	assert.NotContains(t, saved, Climb)
	assert.NotContains(t, saved, Gradient)
	assert.NotContains(t, saved, Angle)

	ascent, ok := tr.Ascent()
	require.True(t, ok)
	assert.Equal(t, 2.0, ascent, "climb is recomputed from elevation")
}

func TestMatch(t *testing.T) {
	tr := flatTrack(t)
	assert.True(t, tr.Match(tr, 0))

	shifted, err := New(map[Field]Series{
		Lat:  {0, 0.0009, 0.0018, 0.0027},
		Lon:  {0.01, 0.01, 0.01, 0.01},
		Time: clock(0, 60, 120, 180),
	})
	require.NoError(t, err)
	assert.False(t, tr.Match(shifted, 40))
	assert.Equal(t, tr.Match(shifted, 2000), shifted.Match(tr, 2000))
}

func TestGraph(t *testing.T) {
	tr := flatTrack(t)
	x, y, err := tr.Graph(Speed, Dist)
	require.NoError(t, err)
	assert.Equal(t, Dist, x.Field)
	assert.Equal(t, "distance", x.Dimension)
	assert.Equal(t, Speed, y.Field)
	assert.Len(t, y.Values, 4)

	_, _, err = tr.Graph(Power, Dist)
	assert.ErrorIs(t, err, ErrMissingField)
}
