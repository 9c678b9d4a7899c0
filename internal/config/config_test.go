package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
server:
  addr: "0.0.0.0:9000"
storage:
  db_path: "/tmp/formcoach-test.db"
camera:
  device: 1
  fps: 30
detector:
  model_complexity: 2
  min_visibility: 0.6
logging:
  level: debug
  file: /tmp/formcoach.log
locale: de
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, "/tmp/formcoach-test.db", cfg.Storage.DBPath)
	assert.Equal(t, 1, cfg.Camera.Device)
	assert.Equal(t, 30, cfg.Camera.FPS)
	assert.Equal(t, 2, cfg.Detector.ModelComplexity)
	assert.Equal(t, 0.6, cfg.Detector.MinVisibility)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "de", cfg.Locale)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, 0.5, cfg.Detector.MinDetectionConfidence)
	assert.Equal(t, 30, cfg.Detector.IdleTimeoutSec)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FORMCOACH_SERVER_ADDR", ":7000")
	t.Setenv("FORMCOACH_CAMERA_FPS", "24")
	t.Setenv("FORMCOACH_DETECTOR_MIN_VISIBILITY", "0.8")
	t.Setenv("FORMCOACH_LOCALE", "en")

	cfg, err := Load(writeTemp(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 24, cfg.Camera.FPS)
	assert.Equal(t, 0.8, cfg.Detector.MinVisibility)
	assert.Equal(t, "en", cfg.Locale)
	// Unchanged fields keep YAML values
	assert.Equal(t, 1, cfg.Camera.Device)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverride_DetectorAndLogging(t *testing.T) {
	t.Setenv("FORMCOACH_DETECTOR_MIN_DETECTION_CONFIDENCE", "0.6")
	t.Setenv("FORMCOACH_DETECTOR_MIN_TRACKING_CONFIDENCE", "0.7")
	t.Setenv("FORMCOACH_DETECTOR_IDLE_TIMEOUT_SEC", "90")
	t.Setenv("FORMCOACH_LOG_TO_STDOUT", "false")
	t.Setenv("FORMCOACH_LOG_JSON", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.6, cfg.Detector.MinDetectionConfidence)
	assert.Equal(t, 0.7, cfg.Detector.MinTrackingConfidence)
	assert.Equal(t, 90, cfg.Detector.IdleTimeoutSec)
	assert.False(t, cfg.Logging.ToStdout)
	assert.True(t, cfg.Logging.JSON)
}

func TestEnvOverride_BadValue(t *testing.T) {
	t.Setenv("FORMCOACH_CAMERA_FPS", "fast")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeTemp(t, "server: [not a map"))
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty addr", "server:\n  addr: \"\"\n"},
		{"empty db path", "storage:\n  db_path: \"\"\n"},
		{"zero fps", "camera:\n  fps: 0\n"},
		{"negative device", "camera:\n  device: -1\n"},
		{"model complexity", "detector:\n  model_complexity: 3\n"},
		{"visibility above one", "detector:\n  min_visibility: 1.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTemp(t, tt.yaml))
			assert.ErrorContains(t, err, "config validation")
		})
	}
}
