package route

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intermernet/activate/internal/geometry"
)

func line(n int, offset, step float64) []geometry.Point {
	out := make([]geometry.Point, n)
	for i := range out {
		out[i] = geometry.Point{X: float64(i) * step, Y: offset}
	}
	return out
}

func TestDistance(t *testing.T) {
	t.Run("identical", func(t *testing.T) {
		a := line(10, 0, 5)
		assert.Equal(t, 0.0, Distance(a, a))
	})

	t.Run("parallel offset", func(t *testing.T) {
		assert.InDelta(t, 30, Distance(line(10, 0, 5), line(10, 30, 5)), 1e-9)
	})

	t.Run("different sampling of the same line", func(t *testing.T) {
		coarse := line(5, 0, 10)
		fine := line(9, 0, 5)
		d := Distance(coarse, fine)
		assert.Less(t, d, 5.0)
	})

	t.Run("empty", func(t *testing.T) {
		assert.True(t, math.IsNaN(Distance(nil, line(3, 0, 1))))
	})
}

func TestMatches(t *testing.T) {
	a := []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 1}, {X: 25, Y: -3}, {X: 31, Y: 7}}
	b := []geometry.Point{{X: 1, Y: 2}, {X: 4, Y: 2}, {X: 12, Y: 0}, {X: 26, Y: 0}, {X: 30, Y: 5}}

	t.Run("self match at zero tolerance", func(t *testing.T) {
		assert.True(t, Matches(a, a, 0))
		assert.True(t, Matches(b, b, 0))
	})

	t.Run("symmetric", func(t *testing.T) {
		require.Equal(t, Distance(a, b), Distance(b, a))
		for _, tol := range []float64{0, 1, 2, 3, 5, 100} {
			assert.Equal(t, Matches(a, b, tol), Matches(b, a, tol), "tolerance %v", tol)
		}
	})

	t.Run("far apart", func(t *testing.T) {
		assert.False(t, Matches(line(10, 0, 5), line(10, 500, 5), 40))
	})

	t.Run("empty never matches", func(t *testing.T) {
		assert.False(t, Matches(nil, nil, 100))
	})
}
