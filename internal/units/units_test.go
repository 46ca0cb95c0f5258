package units

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDimensionValueArithmetic(t *testing.T) {
	a := New(100, Distance)
	b := New(50, Distance)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, New(150, Distance), sum)

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, New(50, Distance), diff)

	less, err := b.Less(a)
	require.NoError(t, err)
	assert.True(t, less)

	assert.Equal(t, New(-100, Distance), a.Neg())
}

func TestDimensionMismatch(t *testing.T) {
	distance := New(100, Distance)
	duration := New(100, Time)

	_, err := distance.Add(duration)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))

	_, err = distance.Compare(duration)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name      string
		system    System
		value     float64
		dimension Dimension
		expected  string
	}{
		{"5 km", Metric, 5000, Distance, "5.00 km"},
		{"mile", Imperial, 1609.344, Distance, "1.00 mi"},
		{"speed", Metric, 10, Speed, "36.00 km/h"},
		{"altitude in feet", Imperial, 304.8, Altitude, "1000.00 ft"},
		{"short time", Metric, 65, Time, "1:05"},
		{"long time", Metric, 3725, Time, "1:02:05"},
		{"pace", Metric, 0.3, Pace, "5:00 min/km"},
		{"heart rate", Metric, 2.5, HeartRate, "150.00 /min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.system.Format(tt.value, tt.dimension))
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	v := Imperial.Encode(1000, Altitude)
	assert.InDelta(t, 3280.84, v, 0.01)
	assert.InDelta(t, 1000, Imperial.Decode(v, Altitude), 1e-9)
	assert.InDelta(t, math.Pi/2, Metric.Decode(90, Angle), 1e-12)
}

func TestSystemByName(t *testing.T) {
	s, ok := SystemByName("Imperial")
	require.True(t, ok)
	assert.Equal(t, "imperial", s.Name)

	_, ok = SystemByName("furlongs")
	assert.False(t, ok)
}
