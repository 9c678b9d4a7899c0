// Package config loads formcoach settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DataDirName is the per-user directory holding the database, logs and scripts.
const DataDirName = ".formcoach"

// Config is the full formcoach configuration. Each section maps to a
// top-level key of the YAML file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Camera   CameraConfig   `yaml:"camera"`
	Detector DetectorConfig `yaml:"detector"`
	Logging  LoggingConfig  `yaml:"logging"`
	Locale   string         `yaml:"locale" env:"FORMCOACH_LOCALE"`
}

// ServerConfig holds the HTTP listen address for the API and dashboard.
type ServerConfig struct {
	Addr string `yaml:"addr" env:"FORMCOACH_SERVER_ADDR"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	DBPath string `yaml:"db_path" env:"FORMCOACH_DB_PATH"`
}

// CameraConfig selects the capture device and its frame rate.
type CameraConfig struct {
	Device int `yaml:"device" env:"FORMCOACH_CAMERA_DEVICE"`
	FPS    int `yaml:"fps" env:"FORMCOACH_CAMERA_FPS"`
}

// DetectorConfig tunes the pose estimation worker. MinVisibility is the
// landmark confidence below which a joint is treated as missing.
type DetectorConfig struct {
	ModelComplexity        int     `yaml:"model_complexity" env:"FORMCOACH_DETECTOR_MODEL_COMPLEXITY"`
	MinDetectionConfidence float64 `yaml:"min_detection_confidence" env:"FORMCOACH_DETECTOR_MIN_DETECTION_CONFIDENCE"`
	MinTrackingConfidence  float64 `yaml:"min_tracking_confidence" env:"FORMCOACH_DETECTOR_MIN_TRACKING_CONFIDENCE"`
	MinVisibility          float64 `yaml:"min_visibility" env:"FORMCOACH_DETECTOR_MIN_VISIBILITY"`
	IdleTimeoutSec         int     `yaml:"idle_timeout_sec" env:"FORMCOACH_DETECTOR_IDLE_TIMEOUT_SEC"`
}

// LoggingConfig mirrors logging.Params.
type LoggingConfig struct {
	Level    string `yaml:"level" env:"FORMCOACH_LOG_LEVEL"`
	File     string `yaml:"file" env:"FORMCOACH_LOG_FILE"`
	ToStdout bool   `yaml:"to_stdout" env:"FORMCOACH_LOG_TO_STDOUT"`
	JSON     bool   `yaml:"json" env:"FORMCOACH_LOG_JSON"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	dataDir := DataDir()
	return &Config{
		Server:  ServerConfig{Addr: "127.0.0.1:8420"},
		Storage: StorageConfig{DBPath: filepath.Join(dataDir, "formcoach.db")},
		Camera:  CameraConfig{Device: 0, FPS: 15},
		Detector: DetectorConfig{
			ModelComplexity:        1,
			MinDetectionConfidence: 0.5,
			MinTrackingConfidence:  0.5,
			MinVisibility:          0.5,
			IdleTimeoutSec:         30,
		},
		Logging: LoggingConfig{Level: "info", ToStdout: true},
		Locale:  "en",
	}
}

// DataDir returns ~/.formcoach, or .formcoach in the working directory when
// the home directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DataDirName
	}
	return filepath.Join(home, DataDirName)
}

// Load reads config from a YAML file on top of Default, then applies
// environment variable overrides. Env vars use the prefix FORMCOACH_:
//
//	FORMCOACH_SERVER_ADDR, FORMCOACH_DB_PATH,
//	FORMCOACH_CAMERA_DEVICE, FORMCOACH_CAMERA_FPS,
//	FORMCOACH_DETECTOR_MODEL_COMPLEXITY,
//	FORMCOACH_DETECTOR_MIN_DETECTION_CONFIDENCE,
//	FORMCOACH_DETECTOR_MIN_TRACKING_CONFIDENCE,
//	FORMCOACH_DETECTOR_MIN_VISIBILITY, FORMCOACH_DETECTOR_IDLE_TIMEOUT_SEC,
//	FORMCOACH_LOG_LEVEL, FORMCOACH_LOG_FILE, FORMCOACH_LOG_TO_STDOUT,
//	FORMCOACH_LOG_JSON, FORMCOACH_LOCALE
//
// An empty path or a missing file yields the defaults plus env overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults plus env
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if c.Camera.Device < 0 {
		return fmt.Errorf("camera.device must not be negative")
	}
	if c.Camera.FPS <= 0 {
		return fmt.Errorf("camera.fps must be positive")
	}
	if c.Detector.ModelComplexity < 0 || c.Detector.ModelComplexity > 2 {
		return fmt.Errorf("detector.model_complexity must be 0, 1 or 2")
	}
	for name, v := range map[string]float64{
		"detector.min_detection_confidence": c.Detector.MinDetectionConfidence,
		"detector.min_tracking_confidence":  c.Detector.MinTrackingConfidence,
		"detector.min_visibility":           c.Detector.MinVisibility,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0,1]", name)
		}
	}
	return nil
}
