package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intermernet/activate/internal/units"
)

var allVars = []string{
	"SERVER_ADDR", "DATA_PATH", "FRONTEND_URL", "UNIT_SYSTEM", "TIMEZONE",
	"SPEED_RANGE", "MATCH_TOLERANCE", "MAX_UPLOAD_MB",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range allVars {
		t.Setenv(name, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "./data", cfg.DataPath)
	assert.Equal(t, filepath.Join("data", "databases"), cfg.DbPath)
	assert.Equal(t, filepath.Join("data", "tracks"), cfg.TracksPath)
	assert.Equal(t, filepath.Join("data", "activities"), cfg.ActivitiesPath)
	assert.Equal(t, units.Metric.Name, cfg.UnitSystem.Name)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, 1, cfg.SpeedRange)
	assert.Equal(t, 40.0, cfg.MatchTolerance)
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes)
	assert.Nil(t, cfg.ParsedFrontendURL)
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_PATH", "/srv/activate")
	t.Setenv("FRONTEND_URL", "https://activate.example.com")
	t.Setenv("UNIT_SYSTEM", "Imperial")
	t.Setenv("TIMEZONE", "Europe/London")
	t.Setenv("SPEED_RANGE", "3")
	t.Setenv("MATCH_TOLERANCE", "25.5")
	t.Setenv("MAX_UPLOAD_MB", "5")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "/srv/activate/activities", cfg.ActivitiesPath)
	assert.Equal(t, "activate.example.com", cfg.ParsedFrontendURL.Host)
	assert.Equal(t, units.Imperial.Name, cfg.UnitSystem.Name)
	assert.Equal(t, "Europe/London", cfg.Location.String())
	assert.Equal(t, 3, cfg.SpeedRange)
	assert.Equal(t, 25.5, cfg.MatchTolerance)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name, value string
	}{
		{"UNIT_SYSTEM", "furlongs"},
		{"TIMEZONE", "Mars/Olympus_Mons"},
		{"SPEED_RANGE", "0"},
		{"SPEED_RANGE", "wide"},
		{"MATCH_TOLERANCE", "-1"},
		{"MAX_UPLOAD_MB", "0"},
		{"FRONTEND_URL", "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.name+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.name, tt.value)
			_, err := New()
			assert.Error(t, err)
		})
	}
}
