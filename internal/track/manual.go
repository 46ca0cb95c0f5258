package track

import (
	"time"
)

// Recording is what an activity needs from its track, whether recorded
// point by point or entered by hand.
type Recording interface {
	StartTime() time.Time
	ElapsedTime() time.Duration
	MovingTime() (time.Duration, error)
	Length() float64
	Ascent() (float64, bool)
	AverageSpeed() float64
	DistanceInDays() map[string]float64
	HasPositionData() bool
	HasAltitudeData() bool
	IsManual() bool
	Contains(f Field) bool
}

var (
	_ Recording = (*Track)(nil)
	_ Recording = (*ManualTrack)(nil)
)

// ManualTrack is a hand-entered activity with no per-point data.
type ManualTrack struct {
	Start    time.Time     `json:"start_time"`
	Distance float64       `json:"length"`
	Climb    *float64      `json:"ascent,omitempty"`
	Elapsed  time.Duration `json:"elapsed_time"`
}

// StartTime returns the entered start time.
func (m *ManualTrack) StartTime() time.Time { return m.Start }

// ElapsedTime returns the entered duration.
func (m *ManualTrack) ElapsedTime() time.Duration { return m.Elapsed }

// MovingTime is the elapsed time.
func (m *ManualTrack) MovingTime() (time.Duration, error) { return m.Elapsed, nil }

// Length returns the entered distance.
func (m *ManualTrack) Length() float64 { return m.Distance }

// Ascent returns the entered climb. ok is false when none was entered.
func (m *ManualTrack) Ascent() (ascent float64, ok bool) {
	if m.Climb == nil {
		return 0, false
	}
	return *m.Climb, true
}

// AverageSpeed is distance over duration, or 0 for a zero duration.
func (m *ManualTrack) AverageSpeed() float64 {
	if m.Elapsed <= 0 {
		return 0
	}
	return m.Distance / m.Elapsed.Seconds()
}

// DistanceInDays puts the whole distance on the start day.
func (m *ManualTrack) DistanceInDays() map[string]float64 {
	return map[string]float64{m.Start.Format(DayFormat): m.Distance}
}

// HasPositionData is always false.
func (m *ManualTrack) HasPositionData() bool { return false }

// HasAltitudeData reports whether a climb was entered.
func (m *ManualTrack) HasAltitudeData() bool { return m.Climb != nil }

// IsManual is always true.
func (m *ManualTrack) IsManual() bool { return true }

// Contains is always false: there are no per-point fields.
func (m *ManualTrack) Contains(Field) bool { return false }
