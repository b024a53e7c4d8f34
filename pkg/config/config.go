// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for framecheck. Precedence is
// defaults, then a YAML file, then FRAMECHECK_* environment variables;
// CLI flags override all three.
type Config struct {
	// Detection thresholds
	MotionThresh    float64 `yaml:"motion_thresh" env:"FRAMECHECK_MOTION_THRESH"`
	SharpnessThresh float64 `yaml:"sharpness_thresh" env:"FRAMECHECK_SHARPNESS_THRESH"`

	// External tools
	FFmpegPath  string `yaml:"ffmpeg_path" env:"FRAMECHECK_FFMPEG_PATH"`
	FFprobePath string `yaml:"ffprobe_path" env:"FRAMECHECK_FFPROBE_PATH"`

	// Annotation
	FontPath string `yaml:"font_path" env:"FRAMECHECK_FONT_PATH"`

	// Encoding
	Quality int `yaml:"quality" env:"FRAMECHECK_QUALITY"` // CRF 0-63
	Bitrate int `yaml:"bitrate" env:"FRAMECHECK_BITRATE"` // kbps, 0 = codec default

	// Logging
	LogLevel string `yaml:"log_level" env:"FRAMECHECK_LOG_LEVEL"`

	// Debug
	Debug              bool   `yaml:"debug" env:"FRAMECHECK_DEBUG"`
	DebugDir           string `yaml:"debug_dir" env:"FRAMECHECK_DEBUG_DIR"`
	DebugStillInterval int    `yaml:"debug_still_interval" env:"FRAMECHECK_DEBUG_STILL_INTERVAL"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		MotionThresh:       1.5,
		SharpnessThresh:    100,
		Quality:            30,
		LogLevel:           "info",
		DebugDir:           "./debug",
		DebugStillInterval: 30,
	}
}

// Load builds a Config from defaults, an optional YAML file, and the
// environment. An empty path skips the file layer; a named file that does
// not exist is an error.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	return cfg, nil
}
