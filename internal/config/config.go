package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/intermernet/activate/internal/units"
)

// Config holds all configuration for the application. By centralizing these
// settings, we make the application easier to manage and deploy.
type Config struct {
	// --- Server & Paths ---
	ServerAddr     string
	DataPath       string
	DbPath         string // Directory of activate.db
	TracksPath     string // Original uploaded files
	ActivitiesPath string // One gzip JSON record per activity
	FrontendURL    string

	// --- Analysis ---
	UnitSystem     units.System
	Location       *time.Location // Day and week boundaries are taken in this zone
	SpeedRange     int            // Points on each side of the speed window
	MatchTolerance float64        // Metres
	MaxUploadBytes int64

	// ParsedFrontendURL is FrontendURL parsed, or nil when it is not set.
	ParsedFrontendURL *url.URL
}

// New creates a new Config instance by loading values from environment variables.
// It returns an error if any value is malformed, preventing the server from starting.
func New() (*Config, error) {
	cfg := &Config{
		ServerAddr:  os.Getenv("SERVER_ADDR"),
		DataPath:    os.Getenv("DATA_PATH"),
		FrontendURL: os.Getenv("FRONTEND_URL"),
	}

	// --- Provide sensible defaults for non-critical values ---
	if cfg.DataPath == "" {
		cfg.DataPath = "./data"
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8080"
	}

	system, ok := units.SystemByName(os.Getenv("UNIT_SYSTEM"))
	if !ok {
		return nil, fmt.Errorf("invalid UNIT_SYSTEM %q: want metric or imperial", os.Getenv("UNIT_SYSTEM"))
	}
	cfg.UnitSystem = system

	zone := os.Getenv("TIMEZONE")
	if zone == "" {
		zone = "UTC"
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", zone, err)
	}
	cfg.Location = loc

	if cfg.SpeedRange, err = intEnv("SPEED_RANGE", 1); err != nil {
		return nil, err
	}
	if cfg.SpeedRange < 1 {
		return nil, errors.New("invalid SPEED_RANGE: must be at least 1")
	}

	if cfg.MatchTolerance, err = floatEnv("MATCH_TOLERANCE", 40); err != nil {
		return nil, err
	}
	if cfg.MatchTolerance < 0 {
		return nil, errors.New("invalid MATCH_TOLERANCE: must not be negative")
	}

	maxUpload, err := intEnv("MAX_UPLOAD_MB", 20)
	if err != nil {
		return nil, err
	}
	if maxUpload < 1 {
		return nil, errors.New("invalid MAX_UPLOAD_MB: must be at least 1")
	}
	cfg.MaxUploadBytes = int64(maxUpload) << 20

	// --- Parse and derive necessary fields ---
	if cfg.FrontendURL != "" {
		parsedURL, err := url.Parse(cfg.FrontendURL)
		if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
			return nil, fmt.Errorf("invalid FRONTEND_URL format %q", cfg.FrontendURL)
		}
		cfg.ParsedFrontendURL = parsedURL
	}

	cfg.DbPath = filepath.Join(cfg.DataPath, "databases")
	cfg.TracksPath = filepath.Join(cfg.DataPath, "tracks")
	cfg.ActivitiesPath = filepath.Join(cfg.DataPath, "activities")

	return cfg, nil
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return v, nil
}

func floatEnv(name string, def float64) (float64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return v, nil
}
