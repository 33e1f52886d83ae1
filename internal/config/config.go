// Package config loads the daykeeper configuration from a YAML file,
// creating a default one on first run.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	defaultRoutingURL = "https://router.project-osrm.org"
	defaultWeatherURL = "https://api.open-meteo.com"
)

// HomeConfig is an optional fixed coordinate used as the device location
// when no live location provider is available.
type HomeConfig struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// Config is the top-level application configuration.
type Config struct {
	// DataDir holds the SQLite database. Empty means ~/.daykeeper.
	DataDir string `yaml:"data_dir"`

	// DayStartHour and DayEndHour bound the window considered when
	// looking for free time slots. Defaults cover the whole day.
	DayStartHour int `yaml:"day_start_hour"`
	DayEndHour   int `yaml:"day_end_hour"`

	// RoutingURL is the OSRM-compatible routing endpoint.
	RoutingURL string `yaml:"routing_url"`

	// WeatherURL is the Open-Meteo-compatible forecast endpoint.
	WeatherURL string `yaml:"weather_url"`

	// Home, if set, is used as the current location.
	Home *HomeConfig `yaml:"home,omitempty"`
}

// DefaultPath returns the default config file location, ~/.daykeeper/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".daykeeper", "config.yaml")
}

// Default returns the in-memory default configuration.
func Default() *Config {
	return &Config{
		DayStartHour: 0,
		DayEndHour:   24,
		RoutingURL:   defaultRoutingURL,
		WeatherURL:   defaultWeatherURL,
	}
}

// Normalize fills missing or out-of-range values with defaults so that
// partially filled configs still behave.
func (c *Config) Normalize() {
	if c.DayStartHour < 0 || c.DayStartHour > 24 {
		c.DayStartHour = 0
	}
	if c.DayEndHour <= c.DayStartHour || c.DayEndHour > 24 {
		c.DayEndHour = 24
	}
	if c.RoutingURL == "" {
		c.RoutingURL = defaultRoutingURL
	}
	if c.WeatherURL == "" {
		c.WeatherURL = defaultWeatherURL
	}
}

// Load reads the configuration from path. If the file does not exist it
// writes a default config there with 0600 permissions and returns it.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			if err := Save(path, cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path with 0600 permissions, creating the parent
// directory as needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config: path is empty")
	}
	if cfg == nil {
		return errors.New("config: config is nil")
	}

	cfg.Normalize()

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
