// Package config provides configuration loading and management for
// msirecon. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"msirecon/pkg/raster"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Processing parameters
	Processing struct {
		// Resolution is the N of the logarithmic mass axis ratio (N+1)/N
		Resolution int `yaml:"resolution"`

		// KernelWidth is the mass smoothing window width in channels
		KernelWidth int `yaml:"kernelWidth"`

		// PixelPitchMicrons is the pixel spacing; zero derives it from
		// the median number of scans per line
		PixelPitchMicrons float64 `yaml:"pixelPitchMicrons"`

		// ClockOffsetSec reconciles the instrument and stage clocks
		ClockOffsetSec float64 `yaml:"clockOffsetSec"`
	} `yaml:"processing"`

	// Cache parameters
	Cache struct {
		// Enabled toggles the content-keyed artifact cache
		Enabled bool `yaml:"enabled"`

		// Dir is the cache directory for cube artifacts
		Dir string `yaml:"dir"`
	} `yaml:"cache"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// ChannelImageDir is where channel images are rendered when
		// image export is requested
		ChannelImageDir string `yaml:"channelImageDir"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.Resolution = raster.DefaultResolution
	cfg.Processing.KernelWidth = raster.DefaultKernelWidth
	cfg.Processing.PixelPitchMicrons = 0
	cfg.Processing.ClockOffsetSec = 0

	cfg.Cache.Enabled = false
	cfg.Cache.Dir = "cube_cache"

	cfg.Output.Verbose = true
	cfg.Output.ChannelImageDir = "channel_images"

	return cfg
}

// LoadConfig loads configuration from a YAML file. If the file does
// not exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the
// specified path.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
