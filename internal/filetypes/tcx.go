package filetypes

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/intermernet/activate/internal/track"
)

type tcxDocument struct {
	Activities []tcxActivity `xml:"Activities>Activity"`
}

type tcxActivity struct {
	Sport string   `xml:"Sport,attr"`
	Laps  []tcxLap `xml:"Lap"`
}

type tcxLap struct {
	Points []tcxPoint `xml:"Track>Trackpoint"`
}

type tcxPoint struct {
	Time      string   `xml:"Time"`
	Lat       *float64 `xml:"Position>LatitudeDegrees"`
	Lon       *float64 `xml:"Position>LongitudeDegrees"`
	Altitude  *float64 `xml:"AltitudeMeters"`
	Distance  *float64 `xml:"DistanceMeters"`
	HeartRate *float64 `xml:"HeartRateBpm>Value"`
	Cadence   *float64 `xml:"Cadence"`
	Ext       struct {
		Speed      *float64 `xml:"TPX>Speed"`
		RunCadence *float64 `xml:"TPX>RunCadence"`
		Watts      *float64 `xml:"TPX>Watts"`
	} `xml:"Extensions"`
}

func setOptional(b *builder, f track.Field, v *float64, convert func(float64) float64) {
	if v == nil {
		return
	}
	value := *v
	if convert != nil {
		value = convert(value)
	}
	b.set(f, value)
}

func parseTCX(r io.Reader) (*Imported, error) {
	var doc tcxDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse tcx: %w", err)
	}

	imp := &Imported{Sport: "unknown"}
	b := newBuilder()
	for i, act := range doc.Activities {
		if i == 0 && act.Sport != "" {
			imp.Sport = act.Sport
		}
		for _, lap := range act.Laps {
			for _, p := range lap.Points {
				b.point()
				if ts, err := time.Parse(time.RFC3339, p.Time); err == nil {
					b.set(track.Time, track.TimeValue(ts))
				}
				if p.Lat != nil && p.Lon != nil {
					setOptional(b, track.Lat, p.Lat, nil)
					setOptional(b, track.Lon, p.Lon, nil)
				}
				setOptional(b, track.Ele, p.Altitude, nil)
				setOptional(b, track.Dist, p.Distance, nil)
				setOptional(b, track.HeartRate, p.HeartRate, perMinute)
				if p.Cadence != nil {
					setOptional(b, track.Cadence, p.Cadence, perMinute)
				} else {
					setOptional(b, track.Cadence, p.Ext.RunCadence, perMinute)
				}
				setOptional(b, track.Speed, p.Ext.Speed, nil)
				setOptional(b, track.Power, p.Ext.Watts, nil)
			}
		}
	}
	imp.Fields = b.result()
	return imp, nil
}
