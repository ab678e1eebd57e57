// Package errors defines the error values shared by the project
// subpackages that operate on individual files.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors returned by file-level operations.
var (
	// ErrNotFound indicates a file or directory was not found.
	ErrNotFound = errors.New("not found")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrAlreadyExists indicates the file or directory already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrAlreadyOpen indicates a document is already open at the path.
	ErrAlreadyOpen = errors.New("document already open")

	// ErrReadOnly indicates the file is read-only.
	ErrReadOnly = errors.New("file is read-only")

	// ErrFileTooLarge indicates the file exceeds the maximum size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrBinaryFile indicates the file appears to be binary.
	ErrBinaryFile = errors.New("binary file")

	// ErrDocumentNotOpen indicates the document is not open.
	ErrDocumentNotOpen = errors.New("document not open")

	// ErrDocumentDirty indicates the document has unsaved changes.
	ErrDocumentDirty = errors.New("document has unsaved changes")
)

// PathError represents an error associated with a file path.
type PathError struct {
	Op   string // Operation that failed (open, read, write, etc.)
	Path string // File path
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError creates a new PathError.
func NewPathError(op, path string, err error) *PathError {
	return &PathError{Op: op, Path: path, Err: err}
}

// IsNotFound returns true if the error indicates a file was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDirty returns true if the error indicates unsaved changes.
func IsDirty(err error) bool {
	return errors.Is(err, ErrDocumentDirty)
}
