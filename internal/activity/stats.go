package activity

import (
	"github.com/intermernet/activate/internal/track"
	"github.com/intermernet/activate/internal/units"
)

// Stat is one row of an activity's summary table.
type Stat struct {
	Name  string               `json:"name"`
	Value units.DimensionValue `json:"value"`
	Text  string               `json:"text"`
}

type statTable struct {
	system units.System
	rows   []Stat
}

func (t *statTable) add(name string, value float64, d units.Dimension) {
	v := units.New(value, d)
	t.rows = append(t.rows, Stat{Name: name, Value: v, Text: v.Format(t.system)})
}

// Stats builds the summary table shown for an activity. Rows that do not
// apply, such as heart rate on a track without it, are omitted.
func (a *Activity) Stats(system units.System) []Stat {
	t := &statTable{system: system}
	rec := a.Track
	full, recorded := rec.(*track.Track)

	t.add("Distance", a.Distance, units.Distance)
	elapsed := rec.ElapsedTime()
	t.add("Elapsed Time", elapsed.Seconds(), units.Time)
	if recorded {
		if moving, err := full.MovingTime(); err == nil && moving < elapsed {
			t.add("Moving Time", moving.Seconds(), units.Time)
		}
	}
	if rec.HasAltitudeData() {
		if ascent, ok := rec.Ascent(); ok {
			t.add("Ascent", ascent, units.Altitude)
		}
		if recorded {
			if descent, ok := full.Descent(); ok {
				t.add("Descent", descent, units.Altitude)
			}
		}
	}

	if speed := rec.AverageSpeed(); speed > 0 {
		var moving float64
		if recorded {
			if v, err := full.AverageSpeedMoving(); err == nil && v/speed >= 1.01 {
				moving = v
			}
		}
		t.add("Average Speed", speed, units.Speed)
		if moving > 0 {
			t.add("Mov. Av. Speed", moving, units.Speed)
		}
		t.add("Pace", 1/speed, units.Pace)
		if moving > 0 {
			t.add("Pace (mov.)", 1/moving, units.Pace)
		}
	}
	if !recorded {
		return t.rows
	}

	if v, err := full.Maximum(track.Speed); err == nil {
		t.add("Max. Speed", v, units.Speed)
	}
	if full.HasAltitudeData() {
		if v, err := full.Maximum(track.Ele); err == nil {
			t.add("Highest Point", v, units.Altitude)
		}
	}
	if v, err := full.Average(track.HeartRate); err == nil {
		t.add("Average HR", v, units.HeartRate)
	}
	if v, err := full.Average(track.Cadence); err == nil {
		t.add("Avg. Cadence", v, units.Cadence)
	}
	if v, err := full.Average(track.Power); err == nil {
		t.add("Average Power", v, units.Power)
		if top, err := full.Maximum(track.Power); err == nil {
			t.add("Max. Power", top, units.Power)
		}
	}
	return t.rows
}
