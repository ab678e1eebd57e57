package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/inkwelldev/inkwell/internal/config/loader"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "INKWELL_"

// Config holds the application configuration. Values merge in layers:
// Default() first, then the config file, then INKWELL_* environment
// variables.
type Config struct {
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Watcher WatcherConfig `toml:"watcher" yaml:"watcher"`
	Buffers BuffersConfig `toml:"buffers" yaml:"buffers"`
}

// LoggingConfig controls application logging.
type LoggingConfig struct {
	// Level is the logging verbosity level ("debug", "info", "warn", "error").
	Level string `toml:"level" yaml:"level"`

	// File is the log file path (empty logs to stderr).
	File string `toml:"file" yaml:"file"`
}

// WatcherConfig controls external file change detection.
type WatcherConfig struct {
	// Enabled turns file watching on.
	Enabled bool `toml:"enabled" yaml:"enabled"`

	// DebounceMillis is how long rapid events on the same path are
	// coalesced before delivery, in milliseconds.
	DebounceMillis int `toml:"debounce_ms" yaml:"debounce_ms"`

	// Exclude is a list of gitignore-style patterns for paths to
	// exclude from watching, on top of each root's .gitignore.
	Exclude []string `toml:"exclude" yaml:"exclude"`

	// MaxWatches caps the number of watched directories (0 = no cap).
	MaxWatches int `toml:"max_watches" yaml:"max_watches"`

	// IgnoreHidden skips dotfiles and dot-directories.
	IgnoreHidden bool `toml:"ignore_hidden" yaml:"ignore_hidden"`
}

// Debounce returns the coalescing window as a duration.
func (w WatcherConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMillis) * time.Millisecond
}

// BuffersConfig controls open file buffers.
type BuffersConfig struct {
	// MaxFileSize is the largest file that may be opened, in bytes.
	MaxFileSize int64 `toml:"max_file_size" yaml:"max_file_size"`

	// AutoReload reloads clean buffers when their file changes on disk.
	AutoReload bool `toml:"auto_reload" yaml:"auto_reload"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Watcher: WatcherConfig{
			Enabled:        true,
			DebounceMillis: 100,
			IgnoreHidden:   false,
		},
		Buffers: BuffersConfig{
			MaxFileSize: 10 * 1024 * 1024,
			AutoReload:  true,
		},
	}
}

// Load builds the configuration: defaults, overlaid by the file at
// path (if any), overlaid by environment variables. An empty path
// skips the file layer; a nonexistent file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		l, err := loaderFor(path)
		if err != nil {
			return cfg, err
		}
		if err := l.Load(&cfg); err != nil {
			return cfg, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loaderFor picks a loader by file extension. Extensionless paths are
// treated as TOML.
func loaderFor(path string) (loader.FileLoader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", "":
		return loader.NewTOMLLoader(path), nil
	case ".yaml", ".yml":
		return loader.NewYAMLLoader(path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ApplyEnv overlays INKWELL_* environment variables onto the
// configuration. Unset variables leave the current values untouched.
func (c *Config) ApplyEnv() error {
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := lookup("LOG_FILE"); ok {
		c.Logging.File = v
	}
	if v, ok := lookup("WATCHER_ENABLED"); ok {
		b, err := parseBool(v)
		if err != nil {
			return envError("WATCHER_ENABLED", v)
		}
		c.Watcher.Enabled = b
	}
	if v, ok := lookup("WATCHER_DEBOUNCE_MS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("WATCHER_DEBOUNCE_MS", v)
		}
		c.Watcher.DebounceMillis = n
	}
	if v, ok := lookup("WATCHER_MAX_WATCHES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("WATCHER_MAX_WATCHES", v)
		}
		c.Watcher.MaxWatches = n
	}
	if v, ok := lookup("WATCHER_IGNORE_HIDDEN"); ok {
		b, err := parseBool(v)
		if err != nil {
			return envError("WATCHER_IGNORE_HIDDEN", v)
		}
		c.Watcher.IgnoreHidden = b
	}
	if v, ok := lookup("WATCHER_EXCLUDE"); ok {
		c.Watcher.Exclude = splitList(v)
	}
	if v, ok := lookup("BUFFERS_MAX_FILE_SIZE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return envError("BUFFERS_MAX_FILE_SIZE", v)
		}
		c.Buffers.MaxFileSize = n
	}
	if v, ok := lookup("BUFFERS_AUTO_RELOAD"); ok {
		b, err := parseBool(v)
		if err != nil {
			return envError("BUFFERS_AUTO_RELOAD", v)
		}
		c.Buffers.AutoReload = b
	}
	return nil
}

func lookup(key string) (string, bool) {
	return os.LookupEnv(EnvPrefix + key)
}

func envError(key, value string) error {
	return fmt.Errorf("invalid %s%s: %q", EnvPrefix, key, value)
}

// parseBool accepts the usual spellings of booleans in environment
// variables.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", s)
	}
}

// splitList splits a comma-separated list, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: "must be one of debug, info, warn, error",
		}
	}
	if c.Watcher.DebounceMillis < 0 {
		return &ValidationError{
			Field:   "watcher.debounce_ms",
			Value:   c.Watcher.DebounceMillis,
			Message: "must not be negative",
		}
	}
	if c.Watcher.MaxWatches < 0 {
		return &ValidationError{
			Field:   "watcher.max_watches",
			Value:   c.Watcher.MaxWatches,
			Message: "must not be negative",
		}
	}
	if c.Buffers.MaxFileSize <= 0 {
		return &ValidationError{
			Field:   "buffers.max_file_size",
			Value:   c.Buffers.MaxFileSize,
			Message: "must be positive",
		}
	}
	return nil
}
