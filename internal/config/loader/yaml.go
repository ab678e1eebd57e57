package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// YAMLLoader loads configuration from YAML files.
type YAMLLoader struct {
	fs   FileSystem
	path string
}

// NewYAMLLoader creates a new YAML loader for the given path.
func NewYAMLLoader(path string) *YAMLLoader {
	return &YAMLLoader{
		fs:   DefaultFS(),
		path: path,
	}
}

// NewYAMLLoaderWithFS creates a YAML loader with a custom file system.
func NewYAMLLoaderWithFS(fsys FileSystem, path string) *YAMLLoader {
	return &YAMLLoader{
		fs:   fsys,
		path: path,
	}
}

var (
	_ FileLoader   = (*YAMLLoader)(nil)
	_ ReaderLoader = (*YAMLLoader)(nil)
)

// Load decodes the configured file into v.
func (l *YAMLLoader) Load(v any) error {
	return l.LoadFrom(l.path, v)
}

// LoadFrom decodes the YAML file at path into v. A missing file leaves
// v untouched and returns nil.
func (l *YAMLLoader) LoadFrom(path string, v any) error {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // File doesn't exist, not an error
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	return l.parse(path, data, v)
}

// LoadFromReader decodes YAML from an io.Reader into v.
func (l *YAMLLoader) LoadFromReader(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	return l.parse("<reader>", data, v)
}

func (l *YAMLLoader) parse(source string, data []byte, v any) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		return &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
	}

	return nil
}
