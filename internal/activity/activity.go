// Package activity wraps a track with its identity and metadata, and
// projects it into the lightweight summaries used for listing.
package activity

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/intermernet/activate/internal/track"
)

// ErrNotManual is returned when a manual-only edit targets a recorded track.
var ErrNotManual = errors.New("activity was not entered manually")

// Activity is one recorded or hand-entered activity.
type Activity struct {
	Name         string
	Sport        string
	Track        track.Recording
	OriginalName string
	Flags        map[string]bool
	EffortLevel  *int
	StartTime    time.Time
	Distance     float64
	ID           uuid.UUID
	Description  string
	Photos       []string
	Server       string
	Username     string
}

// New creates an activity with a fresh id. Start time and distance are
// taken from the track.
func New(name, sport string, rec track.Recording, originalName string) *Activity {
	return &Activity{
		Name:         name,
		Sport:        sport,
		Track:        rec,
		OriginalName: originalName,
		Flags:        map[string]bool{},
		StartTime:    rec.StartTime(),
		Distance:     rec.Length(),
		ID:           uuid.New(),
		Photos:       []string{},
	}
}

// ActiveFlags returns the names of the flags that are set, in no particular
// order.
func (a *Activity) ActiveFlags() []string {
	var out []string
	for name, on := range a.Flags {
		if on {
			out = append(out, name)
		}
	}
	return out
}

// Unloaded is the summary of an activity kept in the activity list.
type Unloaded struct {
	Name        string          `json:"name"`
	Sport       string          `json:"sport"`
	Flags       map[string]bool `json:"flags"`
	EffortLevel *int            `json:"effort_level,omitempty"`
	StartTime   time.Time       `json:"start_time"`
	Distance    float64         `json:"distance"`
	Duration    time.Duration   `json:"duration"`
	Climb       *float64        `json:"climb,omitempty"`
	ID          uuid.UUID       `json:"activity_id"`
	Server      string          `json:"server,omitempty"`
	Username    string          `json:"username,omitempty"`
}

// Unload projects the activity into its summary.
func (a *Activity) Unload() Unloaded {
	u := Unloaded{
		Name:        a.Name,
		Sport:       a.Sport,
		Flags:       a.Flags,
		EffortLevel: a.EffortLevel,
		StartTime:   a.StartTime,
		Distance:    a.Distance,
		Duration:    a.Track.ElapsedTime(),
		ID:          a.ID,
		Server:      a.Server,
		Username:    a.Username,
	}
	if climb, ok := a.Track.Ascent(); ok {
		u.Climb = &climb
	}
	return u
}

// EditParams lists the changes to apply to an activity. Nil fields are left
// unchanged. Distance, Climb, Duration and StartTime only apply to manual
// activities.
type EditParams struct {
	Name        *string         `json:"name,omitempty"`
	Sport       *string         `json:"sport,omitempty"`
	Flags       map[string]bool `json:"flags,omitempty"`
	Description *string         `json:"description,omitempty"`
	EffortLevel *int            `json:"effort_level,omitempty"`
	Photos      []string        `json:"photos,omitempty"`

	Distance  *float64       `json:"distance,omitempty"`
	Climb     *float64       `json:"climb,omitempty"`
	Duration  *time.Duration `json:"duration,omitempty"`
	StartTime *time.Time     `json:"start_time,omitempty"`
}

func (p EditParams) manual() bool {
	return p.Distance != nil || p.Climb != nil || p.Duration != nil || p.StartTime != nil
}

// Edit applies p. A manual activity's track is replaced rather than
// modified.
func (a *Activity) Edit(p EditParams) error {
	if p.manual() {
		old, ok := a.Track.(*track.ManualTrack)
		if !ok {
			return fmt.Errorf("edit %s: %w", a.ID, ErrNotManual)
		}
		m := *old
		if p.Distance != nil {
			m.Distance = *p.Distance
		}
		if p.Climb != nil {
			climb := *p.Climb
			m.Climb = &climb
		}
		if p.Duration != nil {
			m.Elapsed = *p.Duration
		}
		if p.StartTime != nil {
			m.Start = *p.StartTime
		}
		a.Track = &m
		a.Distance = m.Distance
		a.StartTime = m.Start
	}

	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Sport != nil {
		a.Sport = *p.Sport
	}
	if p.Flags != nil {
		a.Flags = p.Flags
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.EffortLevel != nil {
		level := *p.EffortLevel
		a.EffortLevel = &level
	}
	if p.Photos != nil {
		a.Photos = p.Photos
	}
	return nil
}
