// Package config loads sheet-countdown settings from a YAML file with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultCSVURL  = "https://docs.google.com/spreadsheets/d/e/2PACX-1vRwdRuKh0Ic1sb2axxFE1HKUFvCYDpRgI8vP_kzlNwgkK8A5uqLeQeVbolCeYhyAyHzqMSzcMQOUInm/pub?gid=0&single=true&output=csv"
	DefaultEditURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vRwdRuKh0Ic1sb2axxFE1HKUFvCYDpRgI8vP_kzlNwgkK8A5uqLeQeVbolCeYhyAyHzqMSzcMQOUInm/pubhtml"
	DefaultDataDir = "~/.local/share/sheet-countdown"
	DefaultAddr    = "127.0.0.1:8080"
)

// Config holds all sheet-countdown configuration.
type Config struct {
	Sheet   SheetConfig   `yaml:"sheet"`
	Refresh RefreshConfig `yaml:"refresh"`
	Store   StoreConfig   `yaml:"store"`
	Server  ServerConfig  `yaml:"server"`
	Widget  WidgetConfig  `yaml:"widget"`
	Logging LoggingConfig `yaml:"logging"`
}

// SheetConfig points at the published spreadsheet.
type SheetConfig struct {
	CSVURL  string `yaml:"csv_url"`
	EditURL string `yaml:"edit_url"`
	Timeout string `yaml:"timeout"`
}

// RefreshConfig controls the periodic refresh cycle.
type RefreshConfig struct {
	Interval string `yaml:"interval"`
}

// StoreConfig locates the persisted row selector.
type StoreConfig struct {
	DataDir string `yaml:"data_dir"`
	// Watch reloads the widget when another process changes the stored row.
	Watch bool `yaml:"watch"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// WidgetConfig holds the view transition timings.
type WidgetConfig struct {
	RevealDelay        string `yaml:"reveal_delay"`
	TransitionDuration string `yaml:"transition_duration"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	// File receives logs from the terminal widget, which owns the screen.
	File string `yaml:"file"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Sheet: SheetConfig{
			CSVURL:  DefaultCSVURL,
			EditURL: DefaultEditURL,
			Timeout: "30s",
		},
		Refresh: RefreshConfig{
			Interval: "5m",
		},
		Store: StoreConfig{
			DataDir: DefaultDataDir,
			Watch:   true,
		},
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
		Widget: WidgetConfig{
			RevealDelay:        "10ms",
			TransitionDuration: "300ms",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("COUNTDOWN_CSV_URL"); v != "" {
		c.Sheet.CSVURL = v
	}
	if v := os.Getenv("COUNTDOWN_EDIT_URL"); v != "" {
		c.Sheet.EditURL = v
	}
	if v := os.Getenv("COUNTDOWN_DATA_DIR"); v != "" {
		c.Store.DataDir = v
	}
}

// Validate checks that every duration parses and the CSV URL is set.
func (c *Config) Validate() error {
	if c.Sheet.CSVURL == "" {
		return fmt.Errorf("sheet.csv_url is required")
	}
	for name, value := range map[string]string{
		"sheet.timeout":              c.Sheet.Timeout,
		"refresh.interval":           c.Refresh.Interval,
		"widget.reveal_delay":        c.Widget.RevealDelay,
		"widget.transition_duration": c.Widget.TransitionDuration,
	} {
		if _, err := parseDuration(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// SheetTimeout returns the fetch timeout.
func (c *Config) SheetTimeout() time.Duration {
	d, _ := parseDuration(c.Sheet.Timeout)
	return d
}

// RefreshInterval returns the refresh period.
func (c *Config) RefreshInterval() time.Duration {
	d, _ := parseDuration(c.Refresh.Interval)
	return d
}

// RevealDelay returns the delay before the incoming panel fades in.
func (c *Config) RevealDelay() time.Duration {
	d, _ := parseDuration(c.Widget.RevealDelay)
	return d
}

// TransitionDuration returns how long the fade lasts before the outgoing panel is removed.
func (c *Config) TransitionDuration() time.Duration {
	d, _ := parseDuration(c.Widget.TransitionDuration)
	return d
}

// parseDuration treats an empty value as zero, which callers map to their default.
func parseDuration(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", value)
	}
	return d, nil
}
