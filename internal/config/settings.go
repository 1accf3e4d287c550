package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the settings file looked up in the working directory.
const DefaultPath = ".dirsort.yml"

// Settings holds persistent CLI defaults loaded from a config file.
type Settings struct {
	Workers int      `yaml:"workers"`
	Exclude []string `yaml:"exclude,omitempty"` // gitignore-style patterns, relative to the root
	Format  string   `yaml:"format,omitempty"`  // text, table or json

	HistoryDB string `yaml:"history_db,omitempty"`
	History   *bool  `yaml:"history,omitempty"` // nil means enabled

	Watch *WatchConfig `yaml:"watch,omitempty"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	Debounce     time.Duration `yaml:"debounce"`
	Poll         bool          `yaml:"poll"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// HistoryEnabled reports whether runs should be recorded.
func (s *Settings) HistoryEnabled() bool {
	return s.History == nil || *s.History
}

// LoadSettings reads a YAML config file into Settings.
// If the file does not exist, it returns zero-value Settings and nil error.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return &s, nil
}

// ValidFormat reports whether f names a known summary format.
func ValidFormat(f string) bool {
	switch f {
	case "text", "table", "json":
		return true
	}
	return false
}

func (s *Settings) validate() error {
	if s.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", s.Workers)
	}
	if s.Format != "" && !ValidFormat(s.Format) {
		return fmt.Errorf("unknown format %q (use text, table, or json)", s.Format)
	}
	if s.Watch != nil && (s.Watch.Debounce < 0 || s.Watch.PollInterval < 0) {
		return errors.New("watch intervals must not be negative")
	}
	return nil
}
