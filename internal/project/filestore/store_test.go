package filestore

import (
	"context"
	"errors"
	"testing"

	perrors "github.com/inkwelldev/inkwell/internal/project/errors"
	"github.com/inkwelldev/inkwell/internal/project/vfs"
)

func setupTestStore(t *testing.T) (*FileStore, *vfs.MemFS) {
	t.Helper()
	memfs := vfs.NewMemFS()
	store := NewFileStore(memfs)
	return store, memfs
}

func TestFileStore_Open(t *testing.T) {
	store, memfs := setupTestStore(t)
	ctx := context.Background()

	memfs.AddFile("/test/file.go", "package main\n")

	doc, err := store.Open(ctx, "/test/file.go")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if doc.Path != "/test/file.go" {
		t.Errorf("Path = %q, want %q", doc.Path, "/test/file.go")
	}
	if string(doc.GetContent()) != "package main\n" {
		t.Errorf("Content = %q", doc.GetContent())
	}
	if doc.ID == "" {
		t.Error("document ID is empty")
	}
}

func TestFileStore_Open_AlreadyOpen(t *testing.T) {
	store, memfs := setupTestStore(t)
	ctx := context.Background()

	memfs.AddFile("/test/file.go", "content")

	doc1, err := store.Open(ctx, "/test/file.go")
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	doc2, err := store.Open(ctx, "/test/file.go")
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}

	if doc1 != doc2 {
		t.Error("opening same file twice should return same document")
	}
	if store.Count() != 1 {
		t.Errorf("Count = %d, want 1", store.Count())
	}
}

func TestFileStore_Open_EquivalentSpellings(t *testing.T) {
	store, memfs := setupTestStore(t)
	ctx := context.Background()

	memfs.AddFile("/test/file.go", "content")

	doc1, err := store.Open(ctx, "/test/file.go")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	doc2, err := store.Open(ctx, "/test/../test/file.go")
	if err != nil {
		t.Fatalf("Open of equivalent spelling failed: %v", err)
	}

	if doc1 != doc2 {
		t.Error("equivalent spellings should share one document")
	}
}

func TestFileStore_Open_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.Open(context.Background(), "/nonexistent/file.go")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}

	var pathErr *perrors.PathError
	if !errors.As(err, &pathErr) {
		t.Errorf("expected PathError, got %T", err)
	}
}

func TestFileStore_Open_Directory(t *testing.T) {
	store, memfs := setupTestStore(t)

	memfs.MkdirAll("/testdir", 0o755)

	_, err := store.Open(context.Background(), "/testdir")
	if !errors.Is(err, perrors.ErrIsDirectory) {
		t.Errorf("err = %v, want ErrIsDirectory", err)
	}
}

func TestFileStore_Open_Binary(t *testing.T) {
	store, memfs := setupTestStore(t)

	binaryContent := []byte{0x7f, 'E', 'L', 'F', 0x00, 0x01}
	memfs.WriteFile("/binary.dat", binaryContent, 0o644)

	_, err := store.Open(context.Background(), "/binary.dat")
	if !errors.Is(err, perrors.ErrBinaryFile) {
		t.Errorf("err = %v, want ErrBinaryFile", err)
	}
}

func TestFileStore_Open_TooLarge(t *testing.T) {
	memfs := vfs.NewMemFS()
	store := NewFileStoreWithOptions(memfs, WithMaxFileSize(4))

	memfs.WriteFile("/large.txt", []byte("more than four bytes"), 0o644)

	_, err := store.Open(context.Background(), "/large.txt")
	if !errors.Is(err, perrors.ErrFileTooLarge) {
		t.Errorf("err = %v, want ErrFileTooLarge", err)
	}
}

func TestFileStore_Close(t *testing.T) {
	store, memfs := setupTestStore(t)
	ctx := context.Background()

	memfs.AddFile("/test/file.go", "content")

	doc, err := store.Open(ctx, "/test/file.go")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := store.Close(ctx, "/test/file.go", false); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if store.IsOpen("/test/file.go") {
		t.Error("document still open after Close")
	}
	if !doc.IsClosed() {
		t.Error("document not marked closed")
	}

	err = store.Close(ctx, "/test/file.go", false)
	if !errors.Is(err, perrors.ErrDocumentNotOpen) {
		t.Errorf("double close err = %v, want ErrDocumentNotOpen", err)
	}
}

func TestFileStore_Close_Dirty(t *testing.T) {
	store, memfs := setupTestStore(t)
	ctx := context.Background()

	memfs.AddFile("/test/file.go", "content")

	if _, err := store.Open(ctx, "/test/file.go"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.UpdateContent("/test/file.go", []byte("edited")); err != nil {
		t.Fatalf("UpdateContent failed: %v", err)
	}

	err := store.Close(ctx, "/test/file.go", false)
	if !errors.Is(err, perrors.ErrDocumentDirty) {
		t.Errorf("err = %v, want ErrDocumentDirty", err)
	}

	if err := store.Close(ctx, "/test/file.go", true); err != nil {
		t.Errorf("forced Close failed: %v", err)
	}
}

func TestFileStore_Save(t *testing.T) {
	store, memfs := setupTestStore(t)
	ctx := context.Background()

	memfs.AddFile("/test/file.go", "original")

	if _, err := store.Open(ctx, "/test/file.go"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.UpdateContent("/test/file.go", []byte("updated")); err != nil {
		t.Fatalf("UpdateContent failed: %v", err)
	}
	if !store.IsDirty("/test/file.go") {
		t.Fatal("document should be dirty before save")
	}

	if err := store.Save(ctx, "/test/file.go"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if store.IsDirty("/test/file.go") {
		t.Error("document still dirty after save")
	}
	data, err := memfs.ReadFile("/test/file.go")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "updated" {
		t.Errorf("disk content = %q, want %q", data, "updated")
	}
}

func TestFileStore_Save_ReadOnly(t *testing.T) {
	store, memfs := setupTestStore(t)
	ctx := context.Background()

	memfs.AddFile("/test/file.go", "content")

	doc, err := store.Open(ctx, "/test/file.go")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	doc.ReadOnly = true

	if err := store.Save(ctx, "/test/file.go"); !errors.Is(err, perrors.ErrReadOnly) {
		t.Errorf("err = %v, want ErrReadOnly", err)
	}
}

func TestFileStore_Reload(t *testing.T) {
	store, memfs := setupTestStore(t)
	ctx := context.Background()

	memfs.AddFile("/test/file.go", "v1")

	doc, err := store.Open(ctx, "/test/file.go")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	memfs.WriteFile("/test/file.go", []byte("v2"), 0o644)

	if err := store.Reload(ctx, "/test/file.go", false); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if got := string(doc.GetContent()); got != "v2" {
		t.Errorf("content after reload = %q, want %q", got, "v2")
	}
	if doc.IsDirty() {
		t.Error("reloaded document should be clean")
	}
}

func TestFileStore_Reload_DirtyBlocked(t *testing.T) {
	store, memfs := setupTestStore(t)
	ctx := context.Background()

	memfs.AddFile("/test/file.go", "v1")

	if _, err := store.Open(ctx, "/test/file.go"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	store.UpdateContent("/test/file.go", []byte("local edit"))
	memfs.WriteFile("/test/file.go", []byte("v2"), 0o644)

	if err := store.Reload(ctx, "/test/file.go", false); !errors.Is(err, perrors.ErrDocumentDirty) {
		t.Errorf("err = %v, want ErrDocumentDirty", err)
	}
	if err := store.Reload(ctx, "/test/file.go", true); err != nil {
		t.Errorf("forced Reload failed: %v", err)
	}
}

func TestFileStore_ApplyEdit(t *testing.T) {
	store, memfs := setupTestStore(t)
	ctx := context.Background()

	memfs.AddFile("/test/file.go", "hello world")

	doc, err := store.Open(ctx, "/test/file.go")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := store.ApplyEdit("/test/file.go", 6, 11, []byte("there")); err != nil {
		t.Fatalf("ApplyEdit failed: %v", err)
	}
	if got := string(doc.GetContent()); got != "hello there" {
		t.Errorf("content = %q, want %q", got, "hello there")
	}

	err = store.ApplyEdit("/test/file.go", 99, 100, []byte("x"))
	if !errors.Is(err, ErrInvalidEditRange) {
		t.Errorf("err = %v, want ErrInvalidEditRange", err)
	}
}

func TestFileStore_DirtyNotification(t *testing.T) {
	store, memfs := setupTestStore(t)
	ctx := context.Background()

	memfs.AddFile("/test/file.go", "content")

	type change struct {
		path  string
		dirty bool
	}
	var changes []change
	store.OnDirty(func(doc *Document, dirty bool) {
		changes = append(changes, change{doc.Path, dirty})
	})

	if _, err := store.Open(ctx, "/test/file.go"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	store.UpdateContent("/test/file.go", []byte("edit"))    // clean -> dirty
	store.UpdateContent("/test/file.go", []byte("edit 2"))  // stays dirty
	store.UpdateContent("/test/file.go", []byte("content")) // dirty -> clean

	want := []change{
		{"/test/file.go", true},
		{"/test/file.go", false},
	}
	if len(changes) != len(want) {
		t.Fatalf("got %d dirty transitions, want %d: %v", len(changes), len(want), changes)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("changes[%d] = %+v, want %+v", i, changes[i], want[i])
		}
	}
}

func TestFileStore_OpenCloseHandlers(t *testing.T) {
	store, memfs := setupTestStore(t)
	ctx := context.Background()

	memfs.AddFile("/test/file.go", "content")

	var opened, closed []string
	store.OnOpen(func(doc *Document) { opened = append(opened, doc.Path) })
	store.OnClose(func(path string) { closed = append(closed, path) })

	if _, err := store.Open(ctx, "/test/file.go"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Close(ctx, "/test/file.go", false); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if len(opened) != 1 || opened[0] != "/test/file.go" {
		t.Errorf("opened = %v", opened)
	}
	if len(closed) != 1 || closed[0] != "/test/file.go" {
		t.Errorf("closed = %v", closed)
	}
}

func TestFileStore_CheckExternalChanges(t *testing.T) {
	store, memfs := setupTestStore(t)
	ctx := context.Background()

	memfs.AddFile("/test/stable.go", "a")
	memfs.AddFile("/test/touched.go", "b")

	if _, err := store.Open(ctx, "/test/stable.go"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Open(ctx, "/test/touched.go"); err != nil {
		t.Fatal(err)
	}

	memfs.WriteFile("/test/touched.go", []byte("b, changed"), 0o644)

	changed := store.CheckExternalChanges()
	if len(changed) != 1 || changed[0].Path != "/test/touched.go" {
		t.Errorf("changed = %v, want only /test/touched.go", changed)
	}
}

func TestFileStore_CloseAll(t *testing.T) {
	store, memfs := setupTestStore(t)
	ctx := context.Background()

	memfs.AddFile("/a.txt", "a")
	memfs.AddFile("/b.txt", "b")

	store.Open(ctx, "/a.txt")
	store.Open(ctx, "/b.txt")
	store.UpdateContent("/b.txt", []byte("edited"))

	if err := store.CloseAll(ctx, false); !errors.Is(err, perrors.ErrDocumentDirty) {
		t.Errorf("err = %v, want ErrDocumentDirty", err)
	}
	if store.Count() != 2 {
		t.Errorf("Count = %d after refused CloseAll, want 2", store.Count())
	}

	if err := store.CloseAll(ctx, true); err != nil {
		t.Fatalf("forced CloseAll failed: %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("Count = %d, want 0", store.Count())
	}
}

func TestFileStore_GetByID(t *testing.T) {
	store, memfs := setupTestStore(t)
	ctx := context.Background()

	memfs.AddFile("/test/file.go", "content")

	doc, err := store.Open(ctx, "/test/file.go")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	got, ok := store.GetByID(doc.ID)
	if !ok || got != doc {
		t.Errorf("GetByID(%q) = (%v, %v), want the open document", doc.ID, got, ok)
	}
	if _, ok := store.GetByID("no-such-id"); ok {
		t.Error("GetByID of unknown ID reported a document")
	}
}
