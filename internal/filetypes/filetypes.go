// Package filetypes extracts track fields from GPX, FIT and TCX files.
package filetypes

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/intermernet/activate/internal/activity"
	"github.com/intermernet/activate/internal/track"
)

var (
	// ErrUnsupportedFormat means the file extension is not recognised.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyTrack means the file contains no track points.
	ErrEmptyTrack = errors.New("file contains no track points")
)

// Kind is a supported file format.
type Kind string

const (
	GPX Kind = ".gpx"
	FIT Kind = ".fit"
	TCX Kind = ".tcx"
)

// Imported is what a file yields: a name, a sport and raw track fields.
type Imported struct {
	Name   string
	Sport  string
	Fields map[track.Field]track.Series
}

// KindOf returns the format of a file name, looking through a trailing .gz.
func KindOf(name string) (kind Kind, gzipped bool, err error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".gz" {
		gzipped = true
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(name, filepath.Ext(name))))
	}
	switch Kind(ext) {
	case GPX, FIT, TCX:
		return Kind(ext), gzipped, nil
	}
	return "", false, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Load reads and parses a file from disk.
func Load(path string) (*Imported, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, filepath.Base(path))
}

// Parse reads a file whose format is given by name. The name without its
// extensions is used when the file does not name the activity.
func Parse(r io.Reader, name string) (*Imported, error) {
	kind, gzipped, err := KindOf(name)
	if err != nil {
		return nil, err
	}
	if gzipped {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		defer zr.Close()
		r = zr
	}

	var imp *Imported
	switch kind {
	case GPX:
		imp, err = parseGPX(r)
	case FIT:
		imp, err = parseFIT(r)
	case TCX:
		imp, err = parseTCX(r)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(imp.Fields) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyTrack)
	}
	if imp.Name == "" {
		imp.Name = stem(name)
	}
	imp.Sport = activity.ConvertSport(imp.Sport, imp.Name)
	return imp, nil
}

func stem(name string) string {
	base := filepath.Base(name)
	if strings.EqualFold(filepath.Ext(base), ".gz") {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// perMinute converts a per-minute rate to the per-second rate tracks store.
func perMinute(v float64) float64 { return v / 60 }

// builder collects per-point values into columns, padding absent values
// with missing samples.
type builder struct {
	n      int
	fields map[track.Field]track.Series
}

func newBuilder() *builder {
	return &builder{fields: make(map[track.Field]track.Series)}
}

// point starts a new point.
func (b *builder) point() { b.n++ }

func (b *builder) set(f track.Field, v float64) {
	if b.n == 0 || math.IsNaN(v) {
		return
	}
	s := b.fields[f]
	for len(s) < b.n {
		s = append(s, math.NaN())
	}
	s[b.n-1] = v
	b.fields[f] = s
}

// result pads every column to the point count. Columns with no values at
// all are never created.
func (b *builder) result() map[track.Field]track.Series {
	for f, s := range b.fields {
		for len(s) < b.n {
			s = append(s, math.NaN())
		}
		b.fields[f] = s
	}
	return b.fields
}

// ToGPX exports the route of a track as a GPX document.
func ToGPX(name string, t *track.Track) ([]byte, error) {
	return writeGPX(name, t)
}
