package activity

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/intermernet/activate/internal/track"
)

// TrackRecord is the persisted form of a track: either recorded fields or a
// manual entry.
type TrackRecord struct {
	Manual *track.ManualTrack           `json:"manual,omitempty"`
	Fields map[track.Field]track.Series `json:"fields,omitempty"`
}

// Record is the self-contained persisted form of an activity.
type Record struct {
	Name         string          `json:"name"`
	Sport        string          `json:"sport"`
	Track        TrackRecord     `json:"track"`
	OriginalName string          `json:"original_name"`
	Flags        map[string]bool `json:"flags"`
	EffortLevel  *int            `json:"effort_level,omitempty"`
	StartTime    *time.Time      `json:"start_time,omitempty"`
	Distance     *float64        `json:"distance,omitempty"`
	ID           uuid.UUID       `json:"activity_id"`
	Description  string          `json:"description"`
	Photos       []string        `json:"photos"`
	Server       string          `json:"server,omitempty"`
	Username     string          `json:"username,omitempty"`
}

// Record returns the persisted form of a. Derived track fields are not
// included.
func (a *Activity) Record() Record {
	r := Record{
		Name:         a.Name,
		Sport:        a.Sport,
		OriginalName: a.OriginalName,
		Flags:        a.Flags,
		EffortLevel:  a.EffortLevel,
		ID:           a.ID,
		Description:  a.Description,
		Photos:       a.Photos,
		Server:       a.Server,
		Username:     a.Username,
	}
	start, distance := a.StartTime, a.Distance
	r.StartTime, r.Distance = &start, &distance
	switch rec := a.Track.(type) {
	case *track.ManualTrack:
		m := *rec
		r.Track.Manual = &m
	case *track.Track:
		r.Track.Fields = rec.SaveData()
	}
	return r
}

// FromRecord rebuilds an activity. A missing start time or distance is taken
// from the track, and a missing id is generated.
func FromRecord(r Record, opts ...track.Option) (*Activity, error) {
	var rec track.Recording
	if r.Track.Manual != nil {
		m := *r.Track.Manual
		rec = &m
	} else {
		t, err := track.New(r.Track.Fields, opts...)
		if err != nil {
			return nil, fmt.Errorf("activity %s: %w", r.ID, err)
		}
		rec = t
	}

	a := &Activity{
		Name:         r.Name,
		Sport:        r.Sport,
		Track:        rec,
		OriginalName: r.OriginalName,
		Flags:        r.Flags,
		EffortLevel:  r.EffortLevel,
		StartTime:    rec.StartTime(),
		Distance:     rec.Length(),
		ID:           r.ID,
		Description:  r.Description,
		Photos:       r.Photos,
		Server:       r.Server,
		Username:     r.Username,
	}
	if r.StartTime != nil {
		a.StartTime = *r.StartTime
	}
	if r.Distance != nil {
		a.Distance = *r.Distance
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Flags == nil {
		a.Flags = map[string]bool{}
	}
	if a.Photos == nil {
		a.Photos = []string{}
	}
	return a, nil
}

// Encode writes r as gzipped JSON.
func (r Record) Encode(w io.Writer) error {
	zw := gzip.NewWriter(w)
	if err := json.NewEncoder(zw).Encode(r); err != nil {
		zw.Close()
		return fmt.Errorf("encode activity %s: %w", r.ID, err)
	}
	return zw.Close()
}

// DecodeRecord reads a record written by Encode.
func DecodeRecord(r io.Reader) (Record, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return Record{}, fmt.Errorf("decode activity: %w", err)
	}
	defer zr.Close()

	var rec Record
	if err := json.NewDecoder(zr).Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("decode activity: %w", err)
	}
	return rec, nil
}
