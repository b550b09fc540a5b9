package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvAddr overrides Server.Addr when set.
const EnvAddr = "FLIGHTVIZ_ADDR"

// Config holds the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Smoothing SmoothingConfig `yaml:"smoothing"`
	Playback  PlaybackConfig  `yaml:"playback"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	UploadDir string `yaml:"upload_dir"`
}

// TelemetryConfig controls how data files are read.
type TelemetryConfig struct {
	PressureColumns []string `yaml:"pressure_columns"` // header labels tried in order
}

// SmoothingConfig holds the initial smoothing parameters.
type SmoothingConfig struct {
	MedianWindow     int  `yaml:"median_window"`
	MeanWindow       int  `yaml:"mean_window"`
	PolynomialFilter bool `yaml:"polynomial_filter"`
}

// PlaybackConfig holds the animation settings.
type PlaybackConfig struct {
	Interval Duration `yaml:"interval"`
}

// AnalysisConfig holds flight phase detection settings.
type AnalysisConfig struct {
	PhaseThresholdMPS float64 `yaml:"phase_threshold_mps"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	EventsDir string `yaml:"events_dir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			UploadDir: "temp_uploads",
		},
		Telemetry: TelemetryConfig{
			PressureColumns: []string{"Pressure (Pa)", "pressure_pa"},
		},
		Smoothing: SmoothingConfig{
			MedianWindow:     5,
			MeanWindow:       5,
			PolynomialFilter: true,
		},
		Playback: PlaybackConfig{
			Interval: Duration(100 * time.Millisecond),
		},
		Analysis: AnalysisConfig{
			PhaseThresholdMPS: 0.5,
		},
		Log: LogConfig{
			EventsDir: "logs",
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// Values missing from an existing file keep their defaults; the file is not rewritten.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to save config file: %w", err)
		}
	}

	if addr := os.Getenv(EnvAddr); addr != "" {
		cfg.Server.Addr = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot fix up.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if len(c.Telemetry.PressureColumns) == 0 {
		return fmt.Errorf("telemetry.pressure_columns must list at least one column")
	}
	if c.Playback.Interval <= 0 {
		return fmt.Errorf("playback.interval must be positive, got %s", c.Playback.Interval)
	}
	if c.Analysis.PhaseThresholdMPS < 0 {
		return fmt.Errorf("analysis.phase_threshold_mps must not be negative, got %v", c.Analysis.PhaseThresholdMPS)
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Flight Visualizer Configuration
# ------------------------------
# Durations: ns, us, ms, s, m, h
# Smoothing windows are clamped to 1..51 when applied.

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
