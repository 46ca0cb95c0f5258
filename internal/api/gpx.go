package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/intermernet/activate/internal/activity"
	"github.com/intermernet/activate/internal/filetypes"
	"github.com/intermernet/activate/internal/track"
)

// handleImport creates an activity from an uploaded GPX, FIT or TCX file,
// optionally gzipped. The original file is kept under TracksPath.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	// --- 1. Handle File Upload ---
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorJSON(w, fmt.Errorf("file is too large (max %d MB)", s.config.MaxUploadBytes>>20), http.StatusRequestEntityTooLarge)
			return
		}
		s.errorJSON(w, errors.New("invalid file upload"), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file") // "file" must match the name attribute in the form data.
	if err != nil {
		s.errorJSON(w, errors.New("invalid file upload"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.errorJSON(w, errors.New("could not read uploaded file"), http.StatusInternalServerError)
		return
	}

	// --- 2. Extract and validate the track ---
	fileName := filepath.Base(header.Filename)
	kind, gzipped, err := filetypes.KindOf(fileName)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	imp, err := filetypes.Parse(bytes.NewReader(data), fileName)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	t, err := track.New(imp.Fields, s.trackOptions()...)
	if err != nil {
		s.errorJSON(w, fmt.Errorf("%s: %w", fileName, err))
		return
	}

	name := imp.Name
	if override := strings.TrimSpace(r.FormValue("name")); override != "" {
		name = override
	}
	sport := imp.Sport
	if override := strings.TrimSpace(r.FormValue("sport")); override != "" {
		sport = override
	}

	// --- 3. Store the original file under the activity's id ---
	a := activity.New(name, sport, t, "")
	storedName := a.ID.String() + string(kind)
	if gzipped {
		storedName += ".gz"
	}
	a.OriginalName = storedName
	storedPath := filepath.Join(s.config.TracksPath, storedName)
	if err := os.WriteFile(storedPath, data, 0o644); err != nil {
		s.errorJSON(w, fmt.Errorf("could not save file: %w", err), http.StatusInternalServerError)
		return
	}

	// --- 4. Add to the list ---
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.list.Add(a); err != nil {
		// Clean up the file we just created.
		os.Remove(storedPath)
		s.errorJSON(w, err)
		return
	}
	if err := s.list.Save(); err != nil {
		s.errorJSON(w, err)
		return
	}
	log.Printf("INFO: Imported %s as activity %s (%s, %s)", fileName, a.ID, a.Name, a.Sport)
	s.writeJSON(w, http.StatusCreated, envelope{"activity": toActivityResponse(a, s.config.UnitSystem)})
}

// handleRouteGPX exports the route of a recorded activity as GPX.
func (s *Server) handleRouteGPX(w http.ResponseWriter, r *http.Request) {
	id, err := activityID(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.list.Get(id)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	t, ok := a.Track.(*track.Track)
	if !ok {
		s.errorJSON(w, fmt.Errorf("%w: manual activities have no route", track.ErrMissingField))
		return
	}
	out, err := filetypes.ToGPX(a.Name, t)
	if err != nil {
		s.errorJSON(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/gpx+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.ID.String()+".gpx"))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
