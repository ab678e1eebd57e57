package git

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// initRepo creates a git repository with one commit and returns its
// root and the underlying go-git handle.
func initRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	writeFile(t, dir, "README.md", "# test\n")
	commitAll(t, repo, "initial commit")
	return dir, repo
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func commitAll(t *testing.T, repo *gogit.Repository, msg string) {
	t.Helper()

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add("."); err != nil {
		t.Fatalf("add: %v", err)
	}
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()}
	if _, err := wt.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig}); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

// freshManager returns a manager whose status cache never holds, so
// tests observe tree mutations immediately.
func freshManager(t *testing.T) *Manager {
	t.Helper()
	mgr := NewManager(ManagerConfig{StatusCacheTTL: time.Nanosecond})
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestDiscoverRoot(t *testing.T) {
	root, _ := initRepo(t)
	nested := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := discoverRoot(nested)
	if err != nil {
		t.Fatalf("discoverRoot: %v", err)
	}
	if got != root {
		t.Errorf("discoverRoot(%q) = %q, want %q", nested, got, root)
	}
}

func TestDiscoverRootNotFound(t *testing.T) {
	if _, err := discoverRoot(t.TempDir()); !errors.Is(err, ErrRepositoryNotFound) {
		t.Errorf("err = %v, want ErrRepositoryNotFound", err)
	}
}

func TestDiscoverRootGitFile(t *testing.T) {
	// Worktrees keep .git as a file pointing at the real git dir.
	dir := t.TempDir()
	writeFile(t, dir, ".git", "gitdir: /elsewhere/.git/worktrees/x\n")

	got, err := discoverRoot(dir)
	if err != nil {
		t.Fatalf("discoverRoot: %v", err)
	}
	if got != dir {
		t.Errorf("discoverRoot = %q, want %q", got, dir)
	}
}

func TestManagerSharesHandles(t *testing.T) {
	root, _ := initRepo(t)
	nested := filepath.Join(root, "src")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	mgr := freshManager(t)

	a, err := mgr.Discover(root)
	if err != nil {
		t.Fatalf("Discover(root): %v", err)
	}
	b, err := mgr.Discover(nested)
	if err != nil {
		t.Fatalf("Discover(nested): %v", err)
	}
	if a != b {
		t.Error("nested discovery returned a different handle")
	}
}

func TestManagerReopensAfterDestroy(t *testing.T) {
	root, _ := initRepo(t)
	mgr := freshManager(t)

	first, err := mgr.Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	first.Destroy()

	second, err := mgr.Open(root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if second == first {
		t.Error("destroyed handle was reused")
	}
	if second.Destroyed() {
		t.Error("fresh handle reports destroyed")
	}
}

func TestManagerClose(t *testing.T) {
	root, _ := initRepo(t)
	mgr := NewManager(ManagerConfig{})

	repo, err := mgr.Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := mgr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !repo.Destroyed() {
		t.Error("Close left handle alive")
	}
	if _, err := mgr.Open(root); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("Open after Close = %v, want ErrManagerClosed", err)
	}
}

func TestManagerIsRepository(t *testing.T) {
	root, _ := initRepo(t)
	mgr := freshManager(t)

	if !mgr.IsRepository(root) {
		t.Error("IsRepository(root) = false, want true")
	}
	if mgr.IsRepository(t.TempDir()) {
		t.Error("IsRepository(non-repo) = true, want false")
	}
}

func TestRepositoryBranch(t *testing.T) {
	root, gr := initRepo(t)
	mgr := freshManager(t)

	repo, err := mgr.Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	headRef, err := gr.Head()
	if err != nil {
		t.Fatalf("go-git Head: %v", err)
	}

	branch, err := repo.Branch()
	if err != nil {
		t.Fatalf("Branch: %v", err)
	}
	if want := headRef.Name().Short(); branch != want {
		t.Errorf("Branch() = %q, want %q", branch, want)
	}

	head, err := repo.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head.Hash != headRef.Hash().String() {
		t.Errorf("Head().Hash = %q, want %q", head.Hash, headRef.Hash().String())
	}
	if head.Detached {
		t.Error("Head().Detached = true on a branch")
	}
}

func TestRepositoryHeadUnborn(t *testing.T) {
	dir := t.TempDir()
	if _, err := gogit.PlainInit(dir, false); err != nil {
		t.Fatalf("PlainInit: %v", err)
	}

	mgr := freshManager(t)
	repo, err := mgr.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	head, err := repo.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head.ShortName == "" {
		t.Error("unborn Head().ShortName is empty")
	}
	if head.Hash != "" {
		t.Errorf("unborn Head().Hash = %q, want empty", head.Hash)
	}
}

func TestRepositoryStatus(t *testing.T) {
	root, gr := initRepo(t)
	mgr := freshManager(t)

	repo, err := mgr.Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	status, err := repo.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.HasChanges() {
		t.Fatalf("fresh repository has changes: %+v", status)
	}

	writeFile(t, root, "notes.txt", "draft\n")
	status, err = repo.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(status.Untracked) != 1 || status.Untracked[0] != "notes.txt" {
		t.Errorf("Untracked = %v, want [notes.txt]", status.Untracked)
	}

	wt, err := gr.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("notes.txt"); err != nil {
		t.Fatalf("stage: %v", err)
	}

	status, err = repo.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.HasStagedChanges() {
		t.Fatal("staged file not reported")
	}
	got := status.Staged[0]
	if got.Path != "notes.txt" || got.Status != StatusAdded || !got.Staged {
		t.Errorf("Staged[0] = %+v, want added notes.txt", got)
	}

	writeFile(t, root, "README.md", "# test, edited\n")
	status, err = repo.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	var unstaged []string
	for _, fs := range status.Unstaged {
		unstaged = append(unstaged, fs.Path)
	}
	if len(unstaged) != 1 || unstaged[0] != "README.md" {
		t.Errorf("Unstaged = %v, want [README.md]", unstaged)
	}
}

func TestRepositoryStatusCached(t *testing.T) {
	root, _ := initRepo(t)
	mgr := NewManager(ManagerConfig{StatusCacheTTL: time.Hour})
	t.Cleanup(func() { mgr.Close() })

	repo, err := mgr.Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	before, err := repo.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}

	writeFile(t, root, "late.txt", "x\n")
	after, err := repo.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if after != before {
		t.Error("second Status inside the TTL bypassed the cache")
	}
}

func TestRepositoryDestroy(t *testing.T) {
	root, _ := initRepo(t)
	mgr := freshManager(t)

	repo, err := mgr.Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	fired := 0
	repo.OnDestroy(func() { fired++ })

	repo.Destroy()
	repo.Destroy()
	if fired != 1 {
		t.Errorf("destroy callback fired %d times, want 1", fired)
	}
	if !repo.Destroyed() {
		t.Error("Destroyed() = false after Destroy")
	}

	// Late registration fires immediately.
	late := 0
	repo.OnDestroy(func() { late++ })
	if late != 1 {
		t.Errorf("late OnDestroy fired %d times, want 1", late)
	}

	if _, err := repo.Status(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Status after Destroy = %v, want ErrDestroyed", err)
	}
	if _, err := repo.Head(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Head after Destroy = %v, want ErrDestroyed", err)
	}
}
