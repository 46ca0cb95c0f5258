// Package route compares recorded routes with dynamic time warping.
package route

import (
	"math"

	"github.com/intermernet/activate/internal/geometry"
)

// cell is one entry of the warping table: the accumulated cost of the best
// path reaching it and the number of steps on that path.
type cell struct {
	cost  float64
	steps int
}

func (c cell) less(o cell) bool {
	if c.cost != o.cost {
		return c.cost < o.cost
	}
	return c.steps < o.steps
}

func better(a, b, c cell) cell {
	best := a
	if b.less(best) {
		best = b
	}
	if c.less(best) {
		best = c
	}
	return best
}

// Distance returns the dynamic time warping distance between two point
// sequences, normalized by the number of steps on the optimal warping path:
// the mean separation, in metres, of aligned points. It is NaN when either
// sequence is empty.
func Distance(a, b []geometry.Point) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.NaN()
	}
	inf := cell{cost: math.Inf(1)}
	prev := make([]cell, len(b)+1)
	curr := make([]cell, len(b)+1)
	for j := range prev {
		prev[j] = inf
	}
	prev[0] = cell{}

	for i := 1; i <= len(a); i++ {
		curr[0] = inf
		for j := 1; j <= len(b); j++ {
			from := better(prev[j-1], prev[j], curr[j-1])
			curr[j] = cell{
				cost:  from.cost + a[i-1].Distance(b[j-1]),
				steps: from.steps + 1,
			}
		}
		prev, curr = curr, prev
	}
	end := prev[len(b)]
	return end.cost / float64(end.steps)
}

// Matches reports whether two routes are the same within tolerance metres.
// Empty routes never match.
func Matches(a, b []geometry.Point, tolerance float64) bool {
	d := Distance(a, b)
	return !math.IsNaN(d) && d <= tolerance
}
