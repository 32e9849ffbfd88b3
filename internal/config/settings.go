package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings represents the runtime configuration read from vybe.yaml.
type Settings struct {
	// MaxEvalDepth bounds the nesting depth of a single expression evaluation.
	// Zero or negative disables the check.
	MaxEvalDepth int `yaml:"max_eval_depth,omitempty"`

	// MaxBackgroundTasks is the number of Task.Run / BackgroundWorker bodies
	// allowed to execute at the same time. Further launches queue until a slot
	// is released.
	MaxBackgroundTasks int `yaml:"max_background_tasks,omitempty"`

	// LogLevel is one of debug, info, warn, error. Defaults to warn.
	LogLevel string `yaml:"log_level,omitempty"`

	// Color controls coloured CLI output: auto (terminal detection), always, never.
	Color string `yaml:"color,omitempty"`
}

// DefaultSettings returns the settings used when no vybe.yaml is present.
func DefaultSettings() *Settings {
	return &Settings{
		MaxEvalDepth:       DefaultMaxEvalDepth,
		MaxBackgroundTasks: DefaultMaxBackgroundTasks,
		LogLevel:           "warn",
		Color:              "auto",
	}
}

// LoadSettings reads and parses a vybe.yaml file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	return ParseSettings(data, path)
}

// ParseSettings parses vybe.yaml content from bytes.
// The path argument is used only for error messages.
// Keys missing from the document keep their default values.
func ParseSettings(data []byte, path string) (*Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks the settings for consistency.
func (s *Settings) Validate() error {
	if s.MaxBackgroundTasks < 1 {
		return fmt.Errorf("max_background_tasks must be at least 1, got %d", s.MaxBackgroundTasks)
	}
	if _, ok := parseLevel(s.LogLevel); !ok {
		return fmt.Errorf("unknown log_level %q (want debug, info, warn or error)", s.LogLevel)
	}
	switch strings.ToLower(s.Color) {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always or never)", s.Color)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog.Level. Unknown values map to warn.
func (s *Settings) SlogLevel() slog.Level {
	lvl, ok := parseLevel(s.LogLevel)
	if !ok {
		return slog.LevelWarn
	}
	return lvl
}

func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "", "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelWarn, false
}
