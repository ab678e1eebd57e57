package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/inkwelldev/inkwell/internal/config/loader"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want 'info'", cfg.Logging.Level)
	}
	if !cfg.Watcher.Enabled {
		t.Error("Watcher.Enabled = false, want true")
	}
	if cfg.Watcher.DebounceMillis != 100 {
		t.Errorf("Watcher.DebounceMillis = %d, want 100", cfg.Watcher.DebounceMillis)
	}
	if cfg.Buffers.MaxFileSize != 10*1024*1024 {
		t.Errorf("Buffers.MaxFileSize = %d, want 10MiB", cfg.Buffers.MaxFileSize)
	}
	if !cfg.Buffers.AutoReload {
		t.Error("Buffers.AutoReload = false, want true")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load('') error = %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want default 'info'", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load with missing file error = %v", err)
	}
	if cfg.Watcher.DebounceMillis != 100 {
		t.Errorf("DebounceMillis = %d, want default 100", cfg.Watcher.DebounceMillis)
	}
}

func TestLoad_TOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[logging]
level = "debug"

[watcher]
debounce_ms = 250
exclude = ["*.tmp", "scratch/"]

[buffers]
max_file_size = 1024
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want 'debug'", cfg.Logging.Level)
	}
	if cfg.Watcher.DebounceMillis != 250 {
		t.Errorf("DebounceMillis = %d, want 250", cfg.Watcher.DebounceMillis)
	}
	if len(cfg.Watcher.Exclude) != 2 || cfg.Watcher.Exclude[0] != "*.tmp" {
		t.Errorf("Exclude = %v, want [*.tmp scratch/]", cfg.Watcher.Exclude)
	}
	if cfg.Buffers.MaxFileSize != 1024 {
		t.Errorf("MaxFileSize = %d, want 1024", cfg.Buffers.MaxFileSize)
	}

	// Values absent from the file keep their defaults.
	if !cfg.Watcher.Enabled {
		t.Error("Watcher.Enabled = false, want default true")
	}
	if !cfg.Buffers.AutoReload {
		t.Error("Buffers.AutoReload = false, want default true")
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
logging:
  level: warn
watcher:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want 'warn'", cfg.Logging.Level)
	}
	if cfg.Watcher.Enabled {
		t.Error("Watcher.Enabled = true, want false")
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "config.ini"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoad_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging\nlevel = \"x\""), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	var perr *loader.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("error = %T, want *loader.ParseError", err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[logging]
level = "debug"

[watcher]
debounce_ms = 250
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("INKWELL_LOG_LEVEL", "error")
	t.Setenv("INKWELL_WATCHER_DEBOUNCE_MS", "50")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "error" {
		t.Errorf("Level = %q, want 'error' (env wins)", cfg.Logging.Level)
	}
	if cfg.Watcher.DebounceMillis != 50 {
		t.Errorf("DebounceMillis = %d, want 50 (env wins)", cfg.Watcher.DebounceMillis)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("INKWELL_WATCHER_ENABLED", "no")
	t.Setenv("INKWELL_WATCHER_EXCLUDE", "*.log, dist/ ,")
	t.Setenv("INKWELL_BUFFERS_MAX_FILE_SIZE", "2048")
	t.Setenv("INKWELL_BUFFERS_AUTO_RELOAD", "off")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Watcher.Enabled {
		t.Error("Watcher.Enabled = true, want false")
	}
	want := []string{"*.log", "dist/"}
	if len(cfg.Watcher.Exclude) != len(want) {
		t.Fatalf("Exclude = %v, want %v", cfg.Watcher.Exclude, want)
	}
	for i := range want {
		if cfg.Watcher.Exclude[i] != want[i] {
			t.Errorf("Exclude[%d] = %q, want %q", i, cfg.Watcher.Exclude[i], want[i])
		}
	}
	if cfg.Buffers.MaxFileSize != 2048 {
		t.Errorf("MaxFileSize = %d, want 2048", cfg.Buffers.MaxFileSize)
	}
	if cfg.Buffers.AutoReload {
		t.Error("AutoReload = true, want false")
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv("INKWELL_WATCHER_DEBOUNCE_MS", "soon")

	cfg := Default()
	if err := cfg.ApplyEnv(); err == nil {
		t.Error("expected error for non-numeric debounce")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		wantErr bool
	}{
		{"valid", func(c *Config) {}, "", false},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level", true},
		{"negative debounce", func(c *Config) { c.Watcher.DebounceMillis = -1 }, "watcher.debounce_ms", true},
		{"negative max watches", func(c *Config) { c.Watcher.MaxWatches = -5 }, "watcher.max_watches", true},
		{"zero max file size", func(c *Config) { c.Buffers.MaxFileSize = 0 }, "buffers.max_file_size", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("error = %v, want *ValidationError", err)
				}
				if verr.Field != tt.field {
					t.Errorf("Field = %q, want %q", verr.Field, tt.field)
				}
			} else if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestWatcherConfig_Debounce(t *testing.T) {
	w := WatcherConfig{DebounceMillis: 250}
	if got := w.Debounce(); got != 250*time.Millisecond {
		t.Errorf("Debounce() = %v, want 250ms", got)
	}
}

func TestLoadProjectSettings(t *testing.T) {
	root := t.TempDir()
	content := `
[watcher]
exclude = ["generated/"]

[buffers]
max_file_size = 4096
`
	if err := os.WriteFile(filepath.Join(root, ".inkwell.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ps, found, err := LoadProjectSettings(root)
	if err != nil {
		t.Fatalf("LoadProjectSettings() error = %v", err)
	}
	if !found {
		t.Fatal("found = false, want true")
	}
	if len(ps.Watcher.Exclude) != 1 || ps.Watcher.Exclude[0] != "generated/" {
		t.Errorf("Exclude = %v, want [generated/]", ps.Watcher.Exclude)
	}
	if ps.Buffers.MaxFileSize != 4096 {
		t.Errorf("MaxFileSize = %d, want 4096", ps.Buffers.MaxFileSize)
	}
}

func TestLoadProjectSettings_YAML(t *testing.T) {
	root := t.TempDir()
	content := `
watcher:
  exclude:
    - out/
`
	if err := os.WriteFile(filepath.Join(root, ".inkwell.yml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ps, found, err := LoadProjectSettings(root)
	if err != nil {
		t.Fatalf("LoadProjectSettings() error = %v", err)
	}
	if !found {
		t.Fatal("found = false, want true")
	}
	if len(ps.Watcher.Exclude) != 1 || ps.Watcher.Exclude[0] != "out/" {
		t.Errorf("Exclude = %v, want [out/]", ps.Watcher.Exclude)
	}
}

func TestLoadProjectSettings_None(t *testing.T) {
	ps, found, err := LoadProjectSettings(t.TempDir())
	if err != nil {
		t.Fatalf("LoadProjectSettings() error = %v", err)
	}
	if found {
		t.Error("found = true, want false")
	}
	if len(ps.Watcher.Exclude) != 0 {
		t.Errorf("Exclude = %v, want empty", ps.Watcher.Exclude)
	}
}

func TestProjectSettings_Apply(t *testing.T) {
	cfg := Default()
	cfg.Watcher.Exclude = []string{"*.tmp"}

	ps := ProjectSettings{}
	ps.Watcher.Exclude = []string{"generated/"}
	ps.Buffers.MaxFileSize = 4096

	merged := ps.Apply(cfg)

	want := []string{"*.tmp", "generated/"}
	if len(merged.Watcher.Exclude) != len(want) {
		t.Fatalf("Exclude = %v, want %v", merged.Watcher.Exclude, want)
	}
	for i := range want {
		if merged.Watcher.Exclude[i] != want[i] {
			t.Errorf("Exclude[%d] = %q, want %q", i, merged.Watcher.Exclude[i], want[i])
		}
	}
	if merged.Buffers.MaxFileSize != 4096 {
		t.Errorf("MaxFileSize = %d, want 4096", merged.Buffers.MaxFileSize)
	}

	// The original is not mutated.
	if len(cfg.Watcher.Exclude) != 1 {
		t.Errorf("original Exclude = %v, want [*.tmp]", cfg.Watcher.Exclude)
	}
	if cfg.Buffers.MaxFileSize != 10*1024*1024 {
		t.Errorf("original MaxFileSize changed: %d", cfg.Buffers.MaxFileSize)
	}
}

func TestProjectSettings_ApplyEmpty(t *testing.T) {
	cfg := Default()
	merged := ProjectSettings{}.Apply(cfg)

	if merged.Buffers.MaxFileSize != cfg.Buffers.MaxFileSize {
		t.Errorf("MaxFileSize = %d, want unchanged %d", merged.Buffers.MaxFileSize, cfg.Buffers.MaxFileSize)
	}
}
