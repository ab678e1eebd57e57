// Package loader reads configuration files into typed structures.
//
// Loaders exist per format (TOML, YAML) behind a shared interface. A
// missing file is not an error: Load leaves the target untouched so
// defaults survive, which is what the layered defaults-then-file-then-
// environment merge in internal/config relies on.
package loader

import (
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Loader decodes configuration from its source into v.
// v must be a pointer. A nonexistent source leaves v untouched and
// returns nil.
type Loader interface {
	Load(v any) error
}

// FileLoader is a Loader bound to a path that can also load others.
type FileLoader interface {
	Loader
	// LoadFrom decodes the file at path into v.
	LoadFrom(path string, v any) error
}

// ReaderLoader decodes configuration from an io.Reader.
type ReaderLoader interface {
	LoadFromReader(r io.Reader, v any) error
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
