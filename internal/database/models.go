package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/intermernet/activate/internal/activity"
)

// summaryRow mirrors a row of the 'activities' table.
// It uses sql.Null types for columns that can be NULL.
type summaryRow struct {
	ID          string
	Position    int
	Name        string
	Sport       string
	Flags       string // JSON
	EffortLevel sql.NullInt64
	StartTime   string
	Distance    float64
	Duration    int64
	Climb       sql.NullFloat64
	Server      string
	Username    string
}

func rowFromSummary(position int, u activity.Unloaded) (summaryRow, error) {
	flags := u.Flags
	if flags == nil {
		flags = map[string]bool{}
	}
	flagsJSON, err := json.Marshal(flags)
	if err != nil {
		return summaryRow{}, fmt.Errorf("encode flags of %s: %w", u.ID, err)
	}
	row := summaryRow{
		ID:        u.ID.String(),
		Position:  position,
		Name:      u.Name,
		Sport:     u.Sport,
		Flags:     string(flagsJSON),
		StartTime: u.StartTime.Format(time.RFC3339Nano),
		Distance:  u.Distance,
		Duration:  int64(u.Duration),
		Server:    u.Server,
		Username:  u.Username,
	}
	if u.EffortLevel != nil {
		row.EffortLevel = sql.NullInt64{Int64: int64(*u.EffortLevel), Valid: true}
	}
	if u.Climb != nil {
		row.Climb = sql.NullFloat64{Float64: *u.Climb, Valid: true}
	}
	return row, nil
}

func (r summaryRow) summary() (activity.Unloaded, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return activity.Unloaded{}, fmt.Errorf("activity id %q: %w", r.ID, err)
	}
	start, err := time.Parse(time.RFC3339Nano, r.StartTime)
	if err != nil {
		return activity.Unloaded{}, fmt.Errorf("start time of %s: %w", id, err)
	}
	u := activity.Unloaded{
		ID:        id,
		Name:      r.Name,
		Sport:     r.Sport,
		StartTime: start,
		Distance:  r.Distance,
		Duration:  time.Duration(r.Duration),
		Server:    r.Server,
		Username:  r.Username,
	}
	if err := json.Unmarshal([]byte(r.Flags), &u.Flags); err != nil {
		return activity.Unloaded{}, fmt.Errorf("flags of %s: %w", id, err)
	}
	if r.EffortLevel.Valid {
		level := int(r.EffortLevel.Int64)
		u.EffortLevel = &level
	}
	if r.Climb.Valid {
		climb := r.Climb.Float64
		u.Climb = &climb
	}
	return u, nil
}
