package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/intermernet/activate/internal/activity"
	"github.com/intermernet/activate/internal/track"
	"github.com/intermernet/activate/internal/units"
)

// ActivityResponse is the DTO for a fully loaded activity.
type ActivityResponse struct {
	activity.Unloaded
	OriginalName string         `json:"original_name"`
	Description  string         `json:"description"`
	Photos       []string       `json:"photos"`
	Manual       bool           `json:"manual"`
	HasPosition  bool           `json:"has_position"`
	Fields       []track.Field  `json:"fields"`
	Stats        []StatResponse `json:"stats"`
}

// StatResponse is one row of an activity's statistics table, with the
// value both raw (base units) and formatted in the configured unit system.
type StatResponse struct {
	Name      string          `json:"name"`
	Value     float64         `json:"value"`
	Dimension units.Dimension `json:"dimension"`
	Text      string          `json:"text"`
}

// toActivityResponse converts an activity into its public DTO.
func toActivityResponse(a *activity.Activity, system units.System) ActivityResponse {
	resp := ActivityResponse{
		Unloaded:     a.Unload(),
		OriginalName: a.OriginalName,
		Description:  a.Description,
		Photos:       a.Photos,
		Manual:       a.Track.IsManual(),
		HasPosition:  a.Track.HasPositionData(),
		Fields:       []track.Field{},
	}
	if t, ok := a.Track.(*track.Track); ok {
		resp.Fields = t.Fields()
	}
	for _, st := range a.Stats(system) {
		resp.Stats = append(resp.Stats, StatResponse{
			Name:      st.Name,
			Value:     st.Value.Value,
			Dimension: st.Value.Dimension,
			Text:      st.Text,
		})
	}
	return resp
}

// EffortResponse is a best effort with the [lat, lon] points it covers, for
// highlighting on a map.
type EffortResponse struct {
	track.Effort
	Route [][2]float64 `json:"route,omitempty"`
}

// ManualRequest is the payload for creating a hand-entered activity.
// Distance and climb are in metres, duration in seconds.
type ManualRequest struct {
	Name      string    `json:"name"`
	Sport     string    `json:"sport"`
	StartTime time.Time `json:"start_time"`
	Distance  float64   `json:"distance"`
	Duration  float64   `json:"duration"`
	Climb     *float64  `json:"climb,omitempty"`
}

// SyncResponse is the DTO for one sync-state entry.
type SyncResponse struct {
	ActivityID uuid.UUID `json:"activity_id"`
	Service    string    `json:"service"`
	RemoteID   string    `json:"remote_id"`
}

// EddingtonResponse is the DTO for the Eddington summary.
type EddingtonResponse struct {
	Days   []float64 `json:"days"`
	Number int       `json:"number"`
	Unit   string    `json:"unit"`
}
