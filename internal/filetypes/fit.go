package filetypes

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/tormoder/fit"

	"github.com/intermernet/activate/internal/track"
)

const semicirclesToDegrees = 180.0 / (1 << 31)

// Invalid markers of the FIT profile's base types.
const (
	invalidUint8  = 0xFF
	invalidUint16 = 0xFFFF
	invalidUint32 = 0xFFFFFFFF
)

func parseFIT(r io.Reader) (*Imported, error) {
	f, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode fit: %w", err)
	}
	af, err := f.Activity()
	if err != nil {
		return nil, fmt.Errorf("decode fit: %w", err)
	}

	imp := &Imported{Sport: "unknown"}
	if len(af.Sessions) > 0 {
		imp.Sport = snake(af.Sessions[0].Sport.String())
	}

	b := newBuilder()
	for _, rec := range af.Records {
		b.point()
		if !rec.Timestamp.IsZero() {
			b.set(track.Time, track.TimeValue(rec.Timestamp))
		}
		if !rec.PositionLat.Invalid() && !rec.PositionLong.Invalid() {
			b.set(track.Lat, float64(rec.PositionLat.Semicircles())*semicirclesToDegrees)
			b.set(track.Lon, float64(rec.PositionLong.Semicircles())*semicirclesToDegrees)
		}
		switch {
		case rec.EnhancedAltitude != invalidUint32 && rec.EnhancedAltitude != 0:
			b.set(track.Ele, float64(rec.EnhancedAltitude)/5-500)
		case rec.Altitude != invalidUint16:
			b.set(track.Ele, float64(rec.Altitude)/5-500)
		}
		if rec.Distance != invalidUint32 {
			b.set(track.Dist, float64(rec.Distance)/100)
		}
		switch {
		case rec.EnhancedSpeed != invalidUint32 && rec.EnhancedSpeed != 0:
			b.set(track.Speed, float64(rec.EnhancedSpeed)/1000)
		case rec.Speed != invalidUint16:
			b.set(track.Speed, float64(rec.Speed)/1000)
		}
		if rec.HeartRate != invalidUint8 {
			b.set(track.HeartRate, perMinute(float64(rec.HeartRate)))
		}
		if rec.Cadence != invalidUint8 {
			b.set(track.Cadence, perMinute(float64(rec.Cadence)))
		}
		if rec.Power != invalidUint16 {
			b.set(track.Power, float64(rec.Power))
		}
	}
	imp.Fields = b.result()
	return imp, nil
}

// snake turns a FIT enum name such as "AlpineSkiing" into "alpine_skiing".
func snake(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
