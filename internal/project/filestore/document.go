// Package filestore provides open document management for the project
// module.
//
// FileStore tracks all currently open documents, their state
// (clean/dirty), and synchronization between editor buffers and disk
// files. Documents carry a generated ID stable across reloads, so
// serialized sessions can refer to a document rather than its path.
package filestore

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidEditRange is returned when ApplyEdit receives invalid offsets.
var ErrInvalidEditRange = errors.New("invalid edit range")

// Document represents an open file in the editor.
// It tracks the file's state, content, and metadata.
type Document struct {
	mu sync.RWMutex

	// ID uniquely identifies the document for its lifetime.
	ID string

	// Path is the absolute path to the file.
	Path string

	// Version is incremented on each edit.
	Version int64

	// Content is the current document content.
	// This may differ from disk if the document is dirty.
	Content []byte

	// OriginalContent is the content when the file was opened or last
	// saved. Used to detect if the document has changed.
	OriginalContent []byte

	// OpenedAt is when the document was opened.
	OpenedAt time.Time

	// ModifiedAt is when the document was last modified in the editor.
	ModifiedAt time.Time

	// DiskModTime is the file's modification time on disk.
	// Used to detect external changes.
	DiskModTime time.Time

	// ReadOnly indicates the document should not be saved.
	ReadOnly bool

	// closed indicates the document has been closed.
	closed bool
}

// NewDocument creates a new Document from file content.
func NewDocument(path string, content []byte, diskModTime time.Time) *Document {
	contentCopy := make([]byte, len(content))
	copy(contentCopy, content)

	originalCopy := make([]byte, len(content))
	copy(originalCopy, content)

	return &Document{
		ID:              uuid.New().String(),
		Path:            path,
		Version:         1,
		Content:         contentCopy,
		OriginalContent: originalCopy,
		OpenedAt:        time.Now(),
		ModifiedAt:      time.Now(),
		DiskModTime:     diskModTime,
	}
}

// IsDirty returns true if the document has unsaved changes.
func (d *Document) IsDirty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return !bytes.Equal(d.Content, d.OriginalContent)
}

// IsClosed returns true if the document has been closed.
func (d *Document) IsClosed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.closed
}

// GetContent returns a copy of the document content.
func (d *Document) GetContent() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]byte, len(d.Content))
	copy(result, d.Content)
	return result
}

// SetContent updates the document content and increments the version.
func (d *Document) SetContent(content []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Content = make([]byte, len(content))
	copy(d.Content, content)
	d.Version++
	d.ModifiedAt = time.Now()
}

// ApplyEdit applies an incremental edit to the document.
// startOffset and endOffset are byte offsets in the current content.
// Returns ErrInvalidEditRange if offsets are out of bounds.
func (d *Document) ApplyEdit(startOffset, endOffset int, newText []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if startOffset < 0 || endOffset < 0 ||
		startOffset > len(d.Content) || endOffset > len(d.Content) ||
		startOffset > endOffset {
		return ErrInvalidEditRange
	}

	prefix := d.Content[:startOffset]
	suffix := d.Content[endOffset:]

	newContent := make([]byte, len(prefix)+len(newText)+len(suffix))
	copy(newContent, prefix)
	copy(newContent[len(prefix):], newText)
	copy(newContent[len(prefix)+len(newText):], suffix)

	d.Content = newContent
	d.Version++
	d.ModifiedAt = time.Now()
	return nil
}

// MarkSaved updates the document state after saving.
func (d *Document) MarkSaved(diskModTime time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.OriginalContent = make([]byte, len(d.Content))
	copy(d.OriginalContent, d.Content)
	d.DiskModTime = diskModTime
}

// MarkClosed marks the document as closed.
func (d *Document) MarkClosed() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

// HasExternalChanges checks if the file has been modified externally.
func (d *Document) HasExternalChanges(currentDiskModTime time.Time) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return !currentDiskModTime.Equal(d.DiskModTime)
}

// Reload updates the document with new content from disk.
// Returns true if the content actually changed.
func (d *Document) Reload(content []byte, diskModTime time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	changed := !bytes.Equal(content, d.Content)
	if changed {
		d.Content = make([]byte, len(content))
		copy(d.Content, content)
		d.OriginalContent = make([]byte, len(content))
		copy(d.OriginalContent, content)
		d.Version++
		d.ModifiedAt = time.Now()
	}

	d.DiskModTime = diskModTime
	return changed
}

// GetVersion returns the current document version.
func (d *Document) GetVersion() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.Version
}

// Size returns the size of the document content in bytes.
func (d *Document) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.Content)
}
