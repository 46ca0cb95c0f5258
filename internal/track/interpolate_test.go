package track

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		in   Series
		want []float64
	}{
		{"interior gap", Series{1, nan, nan, 4}, []float64{1, 2, 3, 4}},
		{"leading gap", Series{nan, nan, 5}, []float64{5, 5, 5}},
		{"trailing gap", Series{5, nan, nan}, []float64{5, 5, 5}},
		{"mixed", Series{nan, 2, nan, 6, nan}, []float64{2, 2, 4, 6, 6}},
		{"complete", Series{3, 1, 4, 1, 5}, []float64{3, 1, 4, 1, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, Interpolate(tt.in))
			assert.InDeltaSlice(t, tt.want, []float64(tt.in), 1e-9)
		})
	}
}

func TestInterpolateIdempotent(t *testing.T) {
	s := Series{math.NaN(), 1, math.NaN(), math.NaN(), 7, math.NaN()}
	require.NoError(t, Interpolate(s))
	once := s.Clone()
	require.NoError(t, Interpolate(s))
	assert.Equal(t, once, s)
}

func TestInterpolateAllMissing(t *testing.T) {
	err := Interpolate(Series{math.NaN(), math.NaN()})
	assert.ErrorIs(t, err, ErrInterpolation)

	assert.NoError(t, Interpolate(Series{}))
}

func TestLerp(t *testing.T) {
	assert.Equal(t, 2.0, Lerp(2, 4, 0))
	assert.Equal(t, 3.0, Lerp(2, 4, 0.5))
	assert.Equal(t, 4.0, Lerp(2, 4, 1))
}

func TestSeriesJSON(t *testing.T) {
	b, err := json.Marshal(Series{1.5, math.NaN(), 3})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null, 3]`, string(b))

	var s Series
	require.NoError(t, json.Unmarshal(b, &s))
	require.Len(t, s, 3)
	assert.Equal(t, 1.5, s[0])
	assert.True(t, Missing(s[1]))
	assert.Equal(t, 3.0, s[2])
}
