package activity

import (
	"bytes"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intermernet/activate/internal/track"
	"github.com/intermernet/activate/internal/units"
)

var start = time.Date(2024, time.March, 13, 7, 30, 0, 0, time.UTC)

func recorded(t *testing.T) *track.Track {
	t.Helper()
	base := track.TimeValue(start)
	nan := math.NaN()
	tr, err := track.New(map[track.Field]track.Series{
		track.Lat:       {51.5, 51.5009, 51.5018, 51.5027, 51.5036},
		track.Lon:       {-0.12, -0.12, -0.1199, -0.1198, -0.1198},
		track.Ele:       {10, 12, 15, 13, 13},
		track.Time:      {base, base + 30, base + 60, base + 95, base + 120},
		track.HeartRate: {2.2, 2.4, nan, 2.6, 2.7},
	})
	require.NoError(t, err)
	return tr
}

func TestNew(t *testing.T) {
	tr := recorded(t)
	a := New("Morning Run", "Run", tr, "run.gpx")

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.True(t, a.StartTime.Equal(start))
	assert.InDelta(t, tr.Length(), a.Distance, 1e-9)
	assert.NotNil(t, a.Flags)
	assert.Empty(t, a.Photos)
}

func TestRecordRoundTrip(t *testing.T) {
	a := New("Morning Run", "Run", recorded(t), "run.gpx")
	a.Flags = map[string]bool{"Race": true, "Commute": false}
	a.Description = "Along the river"
	a.Photos = []string{"photo1.jpg"}
	level := 4
	a.EffortLevel = &level

	var buf bytes.Buffer
	require.NoError(t, a.Record().Encode(&buf))
	decoded, err := DecodeRecord(&buf)
	require.NoError(t, err)
	b, err := FromRecord(decoded)
	require.NoError(t, err)

	assert.Equal(t, a.Name, b.Name)
	assert.Equal(t, a.Sport, b.Sport)
	assert.Equal(t, a.Flags, b.Flags)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, a.Distance, b.Distance)
	assert.True(t, a.StartTime.Equal(b.StartTime))
	assert.Equal(t, 4, *b.EffortLevel)

	if diff := cmp.Diff(a.Record(), b.Record(), cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}

	ta, tb := a.Track.(*track.Track), b.Track.(*track.Track)
	for _, f := range []track.Field{track.Dist, track.Speed, track.Gradient, track.VerticalSpeed} {
		want, err := ta.Get(f)
		require.NoError(t, err)
		got, err := tb.Get(f)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff([]float64(want), []float64(got), cmpopts.EquateNaNs(), cmpopts.EquateApprox(0, 1e-9)), f)
	}
}

func TestManualRoundTrip(t *testing.T) {
	climb := 50.0
	a := New("Treadmill", "Run", &track.ManualTrack{
		Start:    start,
		Distance: 5000,
		Climb:    &climb,
		Elapsed:  25 * time.Minute,
	}, "")

	var buf bytes.Buffer
	require.NoError(t, a.Record().Encode(&buf))
	decoded, err := DecodeRecord(&buf)
	require.NoError(t, err)
	b, err := FromRecord(decoded)
	require.NoError(t, err)

	require.True(t, b.Track.IsManual())
	assert.Equal(t, 5000.0, b.Distance)
	assert.Equal(t, 25*time.Minute, b.Track.ElapsedTime())
	ascent, ok := b.Track.Ascent()
	assert.True(t, ok)
	assert.Equal(t, 50.0, ascent)
}

func TestFromRecordDefaults(t *testing.T) {
	base := track.TimeValue(start)
	a, err := FromRecord(Record{
		Name:  "Swim",
		Sport: "Swim",
		Track: TrackRecord{Fields: map[track.Field]track.Series{
			track.Dist: {0, 25, 50},
			track.Time: {base, base + 30, base + 65},
		}},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, 50.0, a.Distance)
	assert.True(t, a.StartTime.Equal(start))

	_, err = FromRecord(Record{Track: TrackRecord{Fields: map[track.Field]track.Series{track.Dist: {1}}}})
	assert.ErrorIs(t, err, track.ErrMissingEssentialField)
}

func TestUnload(t *testing.T) {
	tr := recorded(t)
	a := New("Morning Run", "Run", tr, "run.gpx")
	a.Server, a.Username = "example.org", "sam"

	u := a.Unload()
	assert.Equal(t, a.ID, u.ID)
	assert.Equal(t, 120*time.Second, u.Duration)
	require.NotNil(t, u.Climb)
	assert.Equal(t, 5.0, *u.Climb)
	assert.Equal(t, "example.org", u.Server)

	m := New("Gym", "Other", &track.ManualTrack{Start: start, Elapsed: time.Hour}, "")
	assert.Nil(t, m.Unload().Climb)
}

func TestEdit(t *testing.T) {
	t.Run("metadata", func(t *testing.T) {
		a := New("Run", "Run", recorded(t), "run.gpx")
		name, sport := "Tempo", "Walk"
		require.NoError(t, a.Edit(EditParams{
			Name:  &name,
			Sport: &sport,
			Flags: map[string]bool{"Race": true, "Commute": false},
		}))
		assert.Equal(t, "Tempo", a.Name)
		assert.Equal(t, "Walk", a.Sport)
		assert.Equal(t, []string{"Race"}, a.ActiveFlags())
	})

	t.Run("manual fields on a recorded track", func(t *testing.T) {
		a := New("Run", "Run", recorded(t), "run.gpx")
		d := 10.0
		assert.ErrorIs(t, a.Edit(EditParams{Distance: &d}), ErrNotManual)
	})

	t.Run("manual fields replace the track", func(t *testing.T) {
		old := &track.ManualTrack{Start: start, Distance: 1000, Elapsed: time.Minute}
		a := New("Gym", "Run", old, "")
		d, dur := 2000.0, 10*time.Minute
		require.NoError(t, a.Edit(EditParams{Distance: &d, Duration: &dur}))
		assert.Equal(t, 2000.0, a.Distance)
		assert.Equal(t, 10*time.Minute, a.Track.ElapsedTime())
		assert.Equal(t, 1000.0, old.Distance)
	})
}

func TestStats(t *testing.T) {
	a := New("Morning Run", "Run", recorded(t), "run.gpx")
	stats := a.Stats(units.Metric)

	names := make([]string, len(stats))
	for i, s := range stats {
		names[i] = s.Name
	}
	assert.Equal(t, "Distance", names[0])
	assert.Equal(t, "Elapsed Time", names[1])
	assert.Contains(t, names, "Ascent")
	assert.Contains(t, names, "Pace")
	assert.Contains(t, names, "Max. Speed")
	assert.Contains(t, names, "Highest Point")
	assert.Contains(t, names, "Average HR")
	assert.NotContains(t, names, "Average Power")

	for _, s := range stats {
		if s.Name == "Elapsed Time" {
			assert.Equal(t, "2:00", s.Text)
		}
		if s.Name == "Ascent" {
			assert.Equal(t, units.Altitude, s.Value.Dimension)
			assert.Equal(t, 5.0, s.Value.Value)
		}
	}

	manual := New("Gym", "Run", &track.ManualTrack{Start: start, Distance: 3000, Elapsed: 15 * time.Minute}, "")
	var manualNames []string
	for _, s := range manual.Stats(units.Metric) {
		manualNames = append(manualNames, s.Name)
	}
	assert.Equal(t, []string{"Distance", "Elapsed Time", "Average Speed", "Pace"}, manualNames)
}

func TestConvertSport(t *testing.T) {
	tests := []struct {
		raw, name, want string
	}{
		{"running", "", "Run"},
		{"Cycling", "", "Ride"},
		{"Biking", "", "Ride"},
		{"hiking", "", "Walk"},
		{"9", "", "Run"},
		{"16", "", "Swim"},
		{"generic", "Evening ride home", "Ride"},
		{"unknown", "Lunch Run", "Run"},
		{"unknown", "Yoga", Other},
		{"tennis", "", Other},
	}
	for _, tt := range tests {
		t.Run(tt.raw+"/"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertSport(tt.raw, tt.name))
		})
	}
}

func TestSportDefaults(t *testing.T) {
	run := SpecialDistances("Run")
	assert.Contains(t, run, 5000.0)
	assert.True(t, slices.IsSorted(run))

	run[0] = -1
	assert.Equal(t, 400.0, SpecialDistances("Run")[0], "callers get a copy")

	assert.Equal(t, SpecialDistances(""), SpecialDistances("Kayak"))
	assert.Equal(t, SpeedZones(""), SpeedZones(Other))
	assert.True(t, slices.IsSorted(SpeedZones("Ride")))
}
