package filetypes

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/intermernet/activate/internal/track"
)

// gpxExtensions maps extension element names, as written by common devices
// and apps, to fields and a conversion into track units.
var gpxExtensions = map[string]struct {
	field   track.Field
	convert func(float64) float64
}{
	"hr":        {track.HeartRate, perMinute},
	"heartrate": {track.HeartRate, perMinute},
	"cad":       {track.Cadence, perMinute},
	"cadence":   {track.Cadence, perMinute},
	"power":     {track.Power, nil},
	"speed":     {track.Speed, nil},
	"distance":  {track.Dist, nil},
}

func parseGPX(r io.Reader) (*Imported, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read gpx: %w", err)
	}
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse gpx: %w", err)
	}

	imp := &Imported{Sport: "unknown"}
	b := newBuilder()
	for i, trk := range g.Tracks {
		if i == 0 {
			imp.Name = strings.TrimSpace(trk.Name)
			if trk.Type != "" {
				imp.Sport = trk.Type
			}
		}
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				b.point()
				b.set(track.Lat, p.Latitude)
				b.set(track.Lon, p.Longitude)
				if p.Elevation.NotNull() {
					b.set(track.Ele, p.Elevation.Value())
				}
				if !p.Timestamp.IsZero() {
					b.set(track.Time, track.TimeValue(p.Timestamp))
				}
				readExtensions(b, p.Extensions.Nodes)
			}
		}
	}
	if imp.Name == "" {
		imp.Name = strings.TrimSpace(g.Name)
	}
	imp.Fields = b.result()
	return imp, nil
}

// readExtensions walks nested extension elements, such as Garmin's
// TrackPointExtension, looking for known values.
func readExtensions(b *builder, nodes []gpx.ExtensionNode) {
	for _, n := range nodes {
		if len(n.Nodes) > 0 {
			readExtensions(b, n.Nodes)
			continue
		}
		ext, ok := gpxExtensions[strings.ToLower(n.XMLName.Local)]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(n.Data), 64)
		if err != nil {
			continue
		}
		if ext.convert != nil {
			v = ext.convert(v)
		}
		b.set(ext.field, v)
	}
}

func writeGPX(name string, t *track.Track) ([]byte, error) {
	if !t.HasPositionData() {
		return nil, fmt.Errorf("export %q: %w: %s", name, track.ErrMissingField, track.Lat)
	}
	lat, _ := t.Get(track.Lat)
	lon, _ := t.Get(track.Lon)
	var ele track.Series
	if t.HasAltitudeData() {
		ele, _ = t.Get(track.Ele)
	}
	stamps := t.Times()

	var seg gpx.GPXTrackSegment
	for i := range lat {
		var p gpx.GPXPoint
		p.Latitude = lat[i]
		p.Longitude = lon[i]
		if ele != nil {
			p.Elevation = *gpx.NewNullableFloat64(ele[i])
		}
		p.Timestamp = stamps[i].UTC()
		seg.Points = append(seg.Points, p)
	}

	g := &gpx.GPX{
		Version: "1.1",
		Creator: "activate",
		Name:    name,
		Tracks: []gpx.GPXTrack{{
			Name:     name,
			Segments: []gpx.GPXTrackSegment{seg},
		}},
	}
	out, err := g.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("export %q: %w", name, err)
	}
	return out, nil
}
