package config

import (
	"os"
	"path/filepath"
)

// projectSettingsNames are the file names probed for per-project
// settings, in order of preference.
var projectSettingsNames = []string{".inkwell.toml", ".inkwell.yml", ".inkwell.yaml"}

// ProjectSettings are per-project overrides read from an .inkwell.toml
// (or .yml) file at the first workspace root. Zero values mean "no
// override".
type ProjectSettings struct {
	Watcher ProjectWatcherSettings `toml:"watcher" yaml:"watcher"`
	Buffers ProjectBufferSettings  `toml:"buffers" yaml:"buffers"`
}

// ProjectWatcherSettings carries per-project watcher overrides.
type ProjectWatcherSettings struct {
	// Exclude adds watch exclusions on top of the global config and
	// each root's .gitignore.
	Exclude []string `toml:"exclude" yaml:"exclude"`
}

// ProjectBufferSettings carries per-project buffer overrides.
type ProjectBufferSettings struct {
	// MaxFileSize overrides the global open-buffer size cap when positive.
	MaxFileSize int64 `toml:"max_file_size" yaml:"max_file_size"`
}

// LoadProjectSettings reads project settings from root. The boolean
// reports whether a settings file was found; a root without one is not
// an error.
func LoadProjectSettings(root string) (ProjectSettings, bool, error) {
	var ps ProjectSettings
	for _, name := range projectSettingsNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		l, err := loaderFor(path)
		if err != nil {
			return ProjectSettings{}, false, err
		}
		if err := l.Load(&ps); err != nil {
			return ProjectSettings{}, false, err
		}
		return ps, true, nil
	}
	return ProjectSettings{}, false, nil
}

// Apply folds project settings into a configuration copy and returns it.
func (ps ProjectSettings) Apply(cfg Config) Config {
	if len(ps.Watcher.Exclude) > 0 {
		cfg.Watcher.Exclude = append(append([]string(nil), cfg.Watcher.Exclude...), ps.Watcher.Exclude...)
	}
	if ps.Buffers.MaxFileSize > 0 {
		cfg.Buffers.MaxFileSize = ps.Buffers.MaxFileSize
	}
	return cfg
}
