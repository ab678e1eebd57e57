package filestore

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	perrors "github.com/inkwelldev/inkwell/internal/project/errors"
	"github.com/inkwelldev/inkwell/internal/project/vfs"
)

// FileStore manages open documents in the editor.
// It provides thread-safe access to documents and tracks their state.
type FileStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
	vfs       vfs.VFS

	// Configuration
	maxFileSize int64 // Maximum file size to open (0 = unlimited)

	// Event handlers
	onOpen  []func(doc *Document)
	onClose []func(path string)
	onDirty []func(doc *Document, dirty bool)
}

// NewFileStore creates a new FileStore.
func NewFileStore(fs vfs.VFS) *FileStore {
	return &FileStore{
		documents:   make(map[string]*Document),
		vfs:         fs,
		maxFileSize: 10 * 1024 * 1024, // 10MB default
	}
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithMaxFileSize sets the maximum file size.
func WithMaxFileSize(size int64) Option {
	return func(fs *FileStore) {
		fs.maxFileSize = size
	}
}

// NewFileStoreWithOptions creates a new FileStore with options.
func NewFileStoreWithOptions(fs vfs.VFS, opts ...Option) *FileStore {
	store := NewFileStore(fs)
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// isBinary reports whether content looks like binary data. A NUL byte
// within the first 8000 bytes marks the content binary.
func isBinary(content []byte) bool {
	n := len(content)
	if n > 8000 {
		n = 8000
	}
	return bytes.IndexByte(content[:n], 0) >= 0
}

// Open opens a file and returns its Document.
// If the file is already open, returns the existing Document.
func (s *FileStore) Open(ctx context.Context, path string) (*Document, error) {
	return s.open(ctx, path, "")
}

func (s *FileStore) open(_ context.Context, path, id string) (*Document, error) {
	absPath, err := s.vfs.Abs(path)
	if err != nil {
		return nil, &perrors.PathError{Op: "open", Path: path, Err: err}
	}

	// Check if already open
	s.mu.RLock()
	if doc, ok := s.documents[absPath]; ok {
		s.mu.RUnlock()
		return doc, nil
	}
	s.mu.RUnlock()

	info, err := s.vfs.Stat(absPath)
	if err != nil {
		return nil, &perrors.PathError{Op: "open", Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &perrors.PathError{Op: "open", Path: path, Err: perrors.ErrIsDirectory}
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		return nil, &perrors.PathError{Op: "open", Path: path, Err: perrors.ErrFileTooLarge}
	}

	content, err := s.vfs.ReadFile(absPath)
	if err != nil {
		return nil, &perrors.PathError{Op: "open", Path: path, Err: err}
	}
	if isBinary(content) {
		return nil, &perrors.PathError{Op: "open", Path: path, Err: perrors.ErrBinaryFile}
	}

	doc := NewDocument(absPath, content, info.ModTime())
	if id != "" {
		doc.ID = id
	}

	s.mu.Lock()
	// Double-check in case another goroutine opened it
	if existing, ok := s.documents[absPath]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	s.documents[absPath] = doc
	s.mu.Unlock()

	for _, handler := range s.openHandlers() {
		handler(doc)
	}

	return doc, nil
}

// Close closes a document.
// Returns an error if the document has unsaved changes and force is false.
func (s *FileStore) Close(_ context.Context, path string, force bool) error {
	absPath, err := s.vfs.Abs(path)
	if err != nil {
		return &perrors.PathError{Op: "close", Path: path, Err: err}
	}

	s.mu.Lock()
	doc, ok := s.documents[absPath]
	if !ok {
		s.mu.Unlock()
		return &perrors.PathError{Op: "close", Path: path, Err: perrors.ErrDocumentNotOpen}
	}

	if !force && doc.IsDirty() {
		s.mu.Unlock()
		return &perrors.PathError{Op: "close", Path: path, Err: perrors.ErrDocumentDirty}
	}

	doc.MarkClosed()
	delete(s.documents, absPath)
	s.mu.Unlock()

	for _, handler := range s.closeHandlers() {
		handler(absPath)
	}

	return nil
}

// Get returns a document by path if it is open.
func (s *FileStore) Get(path string) (*Document, bool) {
	absPath, err := s.vfs.Abs(path)
	if err != nil {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[absPath]
	return doc, ok
}

// GetByID returns a document by its ID if it is open.
func (s *FileStore) GetByID(id string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.documents {
		if doc.ID == id {
			return doc, true
		}
	}
	return nil, false
}

// IsOpen returns true if the file is open.
func (s *FileStore) IsOpen(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// IsDirty returns true if the file is open and has unsaved changes.
func (s *FileStore) IsDirty(path string) bool {
	doc, ok := s.Get(path)
	if !ok {
		return false
	}
	return doc.IsDirty()
}

// OpenDocuments returns all open documents ordered by path.
func (s *FileStore) OpenDocuments() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs
}

// DirtyDocuments returns all documents with unsaved changes.
func (s *FileStore) DirtyDocuments() []*Document {
	var dirty []*Document
	for _, doc := range s.OpenDocuments() {
		if doc.IsDirty() {
			dirty = append(dirty, doc)
		}
	}
	return dirty
}

// Count returns the number of open documents.
func (s *FileStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// Save saves a document to disk.
func (s *FileStore) Save(_ context.Context, path string) error {
	absPath, err := s.vfs.Abs(path)
	if err != nil {
		return &perrors.PathError{Op: "save", Path: path, Err: err}
	}

	s.mu.RLock()
	doc, ok := s.documents[absPath]
	s.mu.RUnlock()

	if !ok {
		return &perrors.PathError{Op: "save", Path: path, Err: perrors.ErrDocumentNotOpen}
	}
	if doc.ReadOnly {
		return &perrors.PathError{Op: "save", Path: path, Err: perrors.ErrReadOnly}
	}

	content := doc.GetContent()
	if err := s.vfs.WriteFile(absPath, content, 0o644); err != nil {
		return &perrors.PathError{Op: "save", Path: path, Err: err}
	}

	// Saved but mod time unavailable: fall back to now.
	info, err := s.vfs.Stat(absPath)
	if err != nil {
		doc.MarkSaved(time.Now())
	} else {
		doc.MarkSaved(info.ModTime())
	}

	return nil
}

// Reload reloads a document from disk.
// If the document is dirty and force is false, returns an error.
func (s *FileStore) Reload(_ context.Context, path string, force bool) error {
	absPath, err := s.vfs.Abs(path)
	if err != nil {
		return &perrors.PathError{Op: "reload", Path: path, Err: err}
	}

	s.mu.RLock()
	doc, ok := s.documents[absPath]
	s.mu.RUnlock()

	if !ok {
		return &perrors.PathError{Op: "reload", Path: path, Err: perrors.ErrDocumentNotOpen}
	}
	if !force && doc.IsDirty() {
		return &perrors.PathError{Op: "reload", Path: path, Err: perrors.ErrDocumentDirty}
	}

	content, err := s.vfs.ReadFile(absPath)
	if err != nil {
		return &perrors.PathError{Op: "reload", Path: path, Err: err}
	}
	info, err := s.vfs.Stat(absPath)
	if err != nil {
		return &perrors.PathError{Op: "reload", Path: path, Err: err}
	}

	doc.Reload(content, info.ModTime())
	return nil
}

// UpdateContent updates the content of an open document.
// This is typically called from the editor when the buffer changes.
func (s *FileStore) UpdateContent(path string, content []byte) error {
	absPath, err := s.vfs.Abs(path)
	if err != nil {
		return &perrors.PathError{Op: "update", Path: path, Err: err}
	}

	s.mu.RLock()
	doc, ok := s.documents[absPath]
	s.mu.RUnlock()

	if !ok {
		return &perrors.PathError{Op: "update", Path: path, Err: perrors.ErrDocumentNotOpen}
	}

	wasDirty := doc.IsDirty()
	doc.SetContent(content)
	s.notifyDirtyChange(doc, wasDirty)
	return nil
}

// ApplyEdit applies an incremental edit to an open document.
func (s *FileStore) ApplyEdit(path string, startOffset, endOffset int, newText []byte) error {
	absPath, err := s.vfs.Abs(path)
	if err != nil {
		return &perrors.PathError{Op: "edit", Path: path, Err: err}
	}

	s.mu.RLock()
	doc, ok := s.documents[absPath]
	s.mu.RUnlock()

	if !ok {
		return &perrors.PathError{Op: "edit", Path: path, Err: perrors.ErrDocumentNotOpen}
	}

	wasDirty := doc.IsDirty()
	if err := doc.ApplyEdit(startOffset, endOffset, newText); err != nil {
		return &perrors.PathError{Op: "edit", Path: path, Err: err}
	}
	s.notifyDirtyChange(doc, wasDirty)
	return nil
}

func (s *FileStore) notifyDirtyChange(doc *Document, wasDirty bool) {
	isDirty := doc.IsDirty()
	if wasDirty == isDirty {
		return
	}
	for _, handler := range s.dirtyHandlers() {
		handler(doc, isDirty)
	}
}

// CheckExternalChanges checks if any open documents have been modified
// externally. Returns documents that have external changes.
func (s *FileStore) CheckExternalChanges() []*Document {
	var changed []*Document
	for _, doc := range s.OpenDocuments() {
		info, err := s.vfs.Stat(doc.Path)
		if err != nil {
			// File may have been deleted
			continue
		}
		if doc.HasExternalChanges(info.ModTime()) {
			changed = append(changed, doc)
		}
	}
	return changed
}

// CloseAll closes all open documents.
// If force is false, returns an error if any document is dirty.
func (s *FileStore) CloseAll(_ context.Context, force bool) error {
	s.mu.Lock()
	if !force {
		for _, doc := range s.documents {
			if doc.IsDirty() {
				s.mu.Unlock()
				return perrors.ErrDocumentDirty
			}
		}
	}

	paths := make([]string, 0, len(s.documents))
	for path, doc := range s.documents {
		doc.MarkClosed()
		paths = append(paths, path)
	}
	s.documents = make(map[string]*Document)
	s.mu.Unlock()

	sort.Strings(paths)
	handlers := s.closeHandlers()
	for _, path := range paths {
		for _, handler := range handlers {
			handler(path)
		}
	}

	return nil
}

// Event handler registration

// OnOpen registers a handler called when a document is opened.
func (s *FileStore) OnOpen(handler func(doc *Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onOpen = append(s.onOpen, handler)
}

// OnClose registers a handler called when a document is closed.
func (s *FileStore) OnClose(handler func(path string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClose = append(s.onClose, handler)
}

// OnDirty registers a handler called when a document's dirty state changes.
func (s *FileStore) OnDirty(handler func(doc *Document, dirty bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDirty = append(s.onDirty, handler)
}

func (s *FileStore) openHandlers() []func(doc *Document) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	handlers := make([]func(doc *Document), len(s.onOpen))
	copy(handlers, s.onOpen)
	return handlers
}

func (s *FileStore) closeHandlers() []func(path string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	handlers := make([]func(path string), len(s.onClose))
	copy(handlers, s.onClose)
	return handlers
}

func (s *FileStore) dirtyHandlers() []func(doc *Document, dirty bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	handlers := make([]func(doc *Document, dirty bool), len(s.onDirty))
	copy(handlers, s.onDirty)
	return handlers
}
