// Package units attaches physical dimensions to values and converts them
// between unit systems for display.
package units

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDimensionMismatch is returned when two values of different dimensions
// are combined or compared.
var ErrDimensionMismatch = errors.New("incompatible dimensions")

// Dimension is the physical quantity a value measures.
type Dimension string

// Dimension constants. Values are stored in SI base units: metres, seconds,
// metres per second, radians and per-second rates.
const (
	Distance      Dimension = "distance"
	Altitude      Dimension = "altitude"
	Time          Dimension = "time"
	Speed         Dimension = "speed"
	VerticalSpeed Dimension = "vertical_speed"
	Pace          Dimension = "pace"
	Angle         Dimension = "angle"
	LatLon        Dimension = "latlon"
	HeartRate     Dimension = "heartrate"
	Cadence       Dimension = "cadence"
	Power         Dimension = "power"
	Dimensionless Dimension = ""
)

// DimensionValue is a value with a dimension attached.
type DimensionValue struct {
	Value     float64   `json:"value"`
	Dimension Dimension `json:"dimension"`
}

// New returns a DimensionValue.
func New(value float64, dimension Dimension) DimensionValue {
	return DimensionValue{Value: value, Dimension: dimension}
}

func (v DimensionValue) compatible(other DimensionValue) error {
	if v.Dimension != other.Dimension {
		return fmt.Errorf("%w: %q and %q", ErrDimensionMismatch, v.Dimension, other.Dimension)
	}
	return nil
}

// Add returns v + other.
func (v DimensionValue) Add(other DimensionValue) (DimensionValue, error) {
	if err := v.compatible(other); err != nil {
		return DimensionValue{}, err
	}
	return DimensionValue{Value: v.Value + other.Value, Dimension: v.Dimension}, nil
}

// Sub returns v - other.
func (v DimensionValue) Sub(other DimensionValue) (DimensionValue, error) {
	if err := v.compatible(other); err != nil {
		return DimensionValue{}, err
	}
	return DimensionValue{Value: v.Value - other.Value, Dimension: v.Dimension}, nil
}

// Compare returns -1, 0 or 1 as v is less than, equal to or greater than other.
func (v DimensionValue) Compare(other DimensionValue) (int, error) {
	if err := v.compatible(other); err != nil {
		return 0, err
	}
	switch {
	case v.Value < other.Value:
		return -1, nil
	case v.Value > other.Value:
		return 1, nil
	}
	return 0, nil
}

// Less reports whether v < other.
func (v DimensionValue) Less(other DimensionValue) (bool, error) {
	c, err := v.Compare(other)
	return c < 0, err
}

// Neg returns -v.
func (v DimensionValue) Neg() DimensionValue {
	return DimensionValue{Value: -v.Value, Dimension: v.Dimension}
}

// Format renders v in the given unit system.
func (v DimensionValue) Format(s System) string {
	return s.Format(v.Value, v.Dimension)
}

// Unit is a display unit. Size is how many base units one of it contains.
type Unit struct {
	Name   string
	Symbol string
	Size   float64
}

// Encode converts a base-unit value into this unit.
func (u Unit) Encode(value float64) float64 { return value / u.Size }

// Decode converts a value in this unit into base units.
func (u Unit) Decode(value float64) float64 { return value * u.Size }

// Per returns the unit u / other.
func (u Unit) Per(other Unit) Unit {
	return Unit{
		Name:   u.Name + " per " + other.Name,
		Symbol: u.Symbol + "/" + other.Symbol,
		Size:   u.Size / other.Size,
	}
}

var (
	Metre     = Unit{"metre", "m", 1}
	Kilometre = Unit{"kilometre", "km", 1000}
	Foot      = Unit{"foot", "ft", 0.3048}
	Mile      = Unit{"mile", "mi", 1609.344}
	Second    = Unit{"second", "s", 1}
	Minute    = Unit{"minute", "min", 60}
	Hour      = Unit{"hour", "h", 3600}
	Radian    = Unit{"radian", "rad", 1}
	Degree    = Unit{"degree", "°", 3.141592653589793 / 180}
	Watt      = Unit{"watt", "W", 1}
	// PerMinute is used for heart rate and cadence, which are stored per second.
	PerMinute = Unit{"per minute", "/min", 1.0 / 60}
	NoUnit    = Unit{"", "", 1}
)

// System maps every dimension to its preferred display unit.
type System struct {
	Name  string
	Units map[Dimension]Unit
}

// Metric is the default unit system.
var Metric = System{
	Name: "metric",
	Units: map[Dimension]Unit{
		Distance:      Kilometre,
		Altitude:      Metre,
		Time:          Second,
		Speed:         Kilometre.Per(Hour),
		VerticalSpeed: Metre.Per(Minute),
		Pace:          Minute.Per(Kilometre),
		Angle:         Degree,
		LatLon:        NoUnit,
		HeartRate:     PerMinute,
		Cadence:       PerMinute,
		Power:         Watt,
		Dimensionless: NoUnit,
	},
}

// Imperial uses miles and feet.
var Imperial = System{
	Name: "imperial",
	Units: map[Dimension]Unit{
		Distance:      Mile,
		Altitude:      Foot,
		Time:          Second,
		Speed:         Mile.Per(Hour),
		VerticalSpeed: Foot.Per(Minute),
		Pace:          Minute.Per(Mile),
		Angle:         Degree,
		LatLon:        NoUnit,
		HeartRate:     PerMinute,
		Cadence:       PerMinute,
		Power:         Watt,
		Dimensionless: NoUnit,
	},
}

// SystemByName returns the named unit system.
func SystemByName(name string) (System, bool) {
	switch strings.ToLower(name) {
	case "", Metric.Name:
		return Metric, true
	case Imperial.Name:
		return Imperial, true
	}
	return System{}, false
}

func (s System) unit(d Dimension) Unit {
	if u, ok := s.Units[d]; ok {
		return u
	}
	return NoUnit
}

// Encode converts a base-unit value of the given dimension to display units.
func (s System) Encode(value float64, d Dimension) float64 {
	return s.unit(d).Encode(value)
}

// Decode converts a display-unit value of the given dimension to base units.
func (s System) Decode(value float64, d Dimension) float64 {
	return s.unit(d).Decode(value)
}

// Symbol returns the display symbol for a dimension.
func (s System) Symbol(d Dimension) string {
	return s.unit(d).Symbol
}

// Format renders a base-unit value for display. Times and paces are shown as
// clock durations.
func (s System) Format(value float64, d Dimension) string {
	switch d {
	case Time:
		return formatClock(value)
	case Pace:
		return formatClock(s.unit(Distance).Size*value) + " " + s.Symbol(Pace)
	}
	u := s.unit(d)
	if u.Symbol == "" {
		return fmt.Sprintf("%.2f", u.Encode(value))
	}
	return fmt.Sprintf("%.2f %s", u.Encode(value), u.Symbol)
}

func formatClock(seconds float64) string {
	total := int(seconds + 0.5)
	h, m, sec := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
