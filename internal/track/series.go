package track

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Series is the per-point data of one field. Missing samples are NaN.
type Series []float64

// Missing reports whether a sample is absent.
func Missing(v float64) bool { return math.IsNaN(v) }

// NaN is the missing-sample marker.
func NaN() float64 { return math.NaN() }

// FromOptional builds a Series from pointers, mapping nil to a missing sample.
func FromOptional(values []*float64) Series {
	s := make(Series, len(values))
	for i, v := range values {
		if v == nil {
			s[i] = math.NaN()
		} else {
			s[i] = *v
		}
	}
	return s
}

// Valid returns the non-missing samples.
func (s Series) Valid() []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// AllMissing reports whether no sample is present.
func (s Series) AllMissing() bool {
	for _, v := range s {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Clone returns a copy of s.
func (s Series) Clone() Series {
	return append(Series(nil), s...)
}

// MarshalJSON encodes missing samples as null.
func (s Series) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	b := make([]byte, 0, len(s)*8+2)
	b = append(b, '[')
	for i, v := range s {
		if i > 0 {
			b = append(b, ',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			b = append(b, "null"...)
			continue
		}
		b = strconv.AppendFloat(b, v, 'g', -1, 64)
	}
	return append(b, ']'), nil
}

// UnmarshalJSON decodes null entries as missing samples.
func (s *Series) UnmarshalJSON(data []byte) error {
	var values []*float64
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	if values == nil {
		*s = nil
		return nil
	}
	*s = FromOptional(values)
	return nil
}

// TimeValue projects a timestamp onto the numeric time axis (Unix seconds).
func TimeValue(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// TimeOf converts a numeric time sample back into a timestamp.
func TimeOf(v float64) time.Time {
	return time.Unix(0, int64(math.Round(v*1e9))).UTC()
}

// TimeSeries builds the time field from timestamps. Zero timestamps are
// treated as missing.
func TimeSeries(ts []time.Time) Series {
	s := make(Series, len(ts))
	for i, t := range ts {
		if t.IsZero() {
			s[i] = math.NaN()
		} else {
			s[i] = TimeValue(t)
		}
	}
	return s
}

func seconds(v float64) time.Duration {
	return time.Duration(math.Round(v * float64(time.Second)))
}
