package track

import (
	"fmt"
	"math"
)

// Lerp interpolates between a and b: Lerp(a, b, 0) == a, Lerp(a, b, 1) == b.
func Lerp(a, b, ratio float64) float64 {
	return a*(1-ratio) + b*ratio
}

// Interpolate replaces every missing sample of s in place. Interior gaps are
// filled linearly between their neighbours; gaps at either end repeat the
// nearest known value. It fails with ErrInterpolation when nothing is known.
func Interpolate(s Series) error {
	lastGood := -1
	for i, v := range s {
		if math.IsNaN(v) {
			continue
		}
		gap := i - lastGood - 1
		if gap > 0 {
			if lastGood < 0 {
				for k := 0; k < i; k++ {
					s[k] = v
				}
			} else {
				gapSize := float64(gap + 1)
				before := s[lastGood]
				for k := 1; k <= gap; k++ {
					s[lastGood+k] = Lerp(before, v, float64(k)/gapSize)
				}
			}
		}
		lastGood = i
	}
	if lastGood < 0 {
		if len(s) == 0 {
			return nil
		}
		return fmt.Errorf("%w: all %d samples missing", ErrInterpolation, len(s))
	}
	for k := lastGood + 1; k < len(s); k++ {
		s[k] = s[lastGood]
	}
	return nil
}
