// Package workspace implements the ordered store of open root
// directories and their repository associations. It owns the
// add/remove/set operations, their invariants, and path resolution
// against the current roots.
package workspace

import (
	"path/filepath"
	"sync"

	"github.com/inkwelldev/inkwell/internal/project/notify"
	"github.com/inkwelldev/inkwell/internal/project/provider"
	"github.com/inkwelldev/inkwell/internal/project/vfs"
)

// Root pairs an open root directory with its repository association.
// Keeping the pair in one entry makes index drift between directories
// and repositories impossible.
type Root struct {
	// Dir is the resolved directory handle.
	Dir provider.Directory

	// Path is Dir's normalized path, captured at add time.
	Path string

	// Repo is the repository backing the root, nil when no provider
	// claims it.
	Repo provider.Repository
}

// Workspace is the ordered collection of open roots. Each mutation
// captures the updated path list in the same critical section as its
// commit and queues it for delivery, so notifications arrive in commit
// order even under concurrent mutation and every notification reflects
// the state after its mutation. The queue is drained synchronously by
// the mutating call, so a sequential caller has seen its own
// notification delivered by the time the mutation returns.
//
// Directory resolution, repository resolution, repository destruction
// and observer callbacks all run outside the internal lock; provider
// and observer code may therefore re-enter the workspace. A mutation
// made from inside an observer callback queues behind the in-flight
// delivery and is delivered by the same drain.
type Workspace struct {
	mu       sync.Mutex
	roots    []Root
	registry *provider.Registry
	notifier *notify.Notifier

	// pending holds captured path lists awaiting delivery; emitting
	// marks the goroutine currently draining them.
	pending  [][]string
	emitting bool
}

// New creates an empty workspace resolving through reg.
func New(reg *provider.Registry) *Workspace {
	return &Workspace{
		registry: reg,
		notifier: notify.New(),
	}
}

// OnDidChangePaths subscribes fn to path-list changes. There is no
// replay: fn sees only changes made after subscription.
func (w *Workspace) OnDidChangePaths(fn notify.Observer) *notify.Subscription {
	return w.notifier.Subscribe(fn)
}

// AddPath opens uri as a new root and reports whether the root set
// changed. Two additions are rejected as no-ops: a root whose resolved
// path is already open, and a directory missing from its backing store
// while an existing root already contains its path. A change event
// with the full updated path list is emitted on success.
func (w *Workspace) AddPath(uri string) bool {
	return w.addPath(uri, false)
}

func (w *Workspace) addPath(uri string, suppress bool) bool {
	dir := w.registry.ResolveDirectory(uri)
	path := dir.Path()
	exists := dir.Exists()

	w.mu.Lock()
	if w.rejectsLocked(path, exists) {
		w.mu.Unlock()
		return false
	}
	w.mu.Unlock()

	// Best-effort synchronous association; the authoritative answer
	// comes from the asynchronous lookup path.
	repo := w.registry.ResolveRepositorySync(dir)

	w.mu.Lock()
	// Re-check: a concurrent add may have claimed the path while the
	// provider ran. The loser leaves the repository handle alone, its
	// lifetime belongs to whoever produced it.
	if w.rejectsLocked(path, exists) {
		w.mu.Unlock()
		return false
	}
	w.roots = append(w.roots, Root{Dir: dir, Path: path, Repo: repo})
	if !suppress {
		w.pending = append(w.pending, w.pathsLocked())
	}
	w.mu.Unlock()

	if !suppress {
		w.drain()
	}
	return true
}

// drain delivers queued notifications in commit order. Only one
// goroutine drains at a time; the rest queue and return, their entries
// delivered by the active drainer.
func (w *Workspace) drain() {
	w.mu.Lock()
	if w.emitting {
		w.mu.Unlock()
		return
	}
	w.emitting = true
	for len(w.pending) > 0 {
		next := w.pending[0]
		w.pending = w.pending[1:]
		w.mu.Unlock()
		w.notifier.Notify(next)
		w.mu.Lock()
	}
	w.emitting = false
	w.mu.Unlock()
}

// rejectsLocked applies the add guards. The nested guard is
// deliberately asymmetric: an existing path nested under a root is
// accepted, and a missing path with no containing root is accepted
// too.
func (w *Workspace) rejectsLocked(path string, exists bool) bool {
	for _, r := range w.roots {
		if r.Path == path {
			return true
		}
	}
	if !exists {
		for _, r := range w.roots {
			if r.Dir.Contains(path) {
				return true
			}
		}
	}
	return false
}

// RemovePath closes the root identified by pathOrURI and reports
// whether a root was removed. The argument is matched verbatim against
// current root paths first; only a scheme-less miss is normalized and
// matched again, since URIs must not be filesystem-normalized. The
// removed root's repository is destroyed unless the identical handle
// survives in another root.
func (w *Workspace) RemovePath(pathOrURI string) bool {
	w.mu.Lock()
	idx := w.indexOfLocked(pathOrURI)
	if idx < 0 && vfs.SchemeOf(pathOrURI) == "" {
		if normalized, err := filepath.Abs(pathOrURI); err == nil {
			idx = w.indexOfLocked(normalized)
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return false
	}

	removed := w.roots[idx]
	w.roots = append(w.roots[:idx], w.roots[idx+1:]...)

	destroy := removed.Repo != nil
	if destroy {
		for _, r := range w.roots {
			if r.Repo == removed.Repo {
				destroy = false
				break
			}
		}
	}
	w.pending = append(w.pending, w.pathsLocked())
	w.mu.Unlock()

	if destroy {
		removed.Repo.Destroy()
	}
	w.drain()
	return true
}

func (w *Workspace) indexOfLocked(path string) int {
	for i, r := range w.roots {
		if r.Path == path {
			return i
		}
	}
	return -1
}

// SetPaths replaces the whole root set. Every current repository is
// destroyed unconditionally (Destroy is idempotent; a handle shared by
// several roots sees the call more than once), the new paths are added
// with per-add emission suppressed, and exactly one aggregate change
// event carrying the resulting path list is emitted. SetPaths(nil)
// clears the workspace and emits an empty list.
func (w *Workspace) SetPaths(paths []string) {
	w.mu.Lock()
	old := w.roots
	w.roots = nil
	w.mu.Unlock()

	for _, r := range old {
		if r.Repo != nil {
			r.Repo.Destroy()
		}
	}

	for _, p := range paths {
		w.addPath(p, true)
	}

	w.mu.Lock()
	w.pending = append(w.pending, w.pathsLocked())
	w.mu.Unlock()
	w.drain()
}

// Close destroys all repositories and clears the roots without
// emitting a change event.
func (w *Workspace) Close() {
	w.mu.Lock()
	old := w.roots
	w.roots = nil
	w.mu.Unlock()

	for _, r := range old {
		if r.Repo != nil {
			r.Repo.Destroy()
		}
	}
}

// Paths returns the current root paths in registration order.
func (w *Workspace) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pathsLocked()
}

func (w *Workspace) pathsLocked() []string {
	paths := make([]string, len(w.roots))
	for i, r := range w.roots {
		paths[i] = r.Path
	}
	return paths
}

// Directories returns the root directory handles in registration
// order.
func (w *Workspace) Directories() []provider.Directory {
	w.mu.Lock()
	defer w.mu.Unlock()

	dirs := make([]provider.Directory, len(w.roots))
	for i, r := range w.roots {
		dirs[i] = r.Dir
	}
	return dirs
}

// Repositories returns the repository of each root in registration
// order; entries are nil where no provider claimed the root.
func (w *Workspace) Repositories() []provider.Repository {
	w.mu.Lock()
	defer w.mu.Unlock()

	repos := make([]provider.Repository, len(w.roots))
	for i, r := range w.roots {
		repos[i] = r.Repo
	}
	return repos
}

// Roots returns the paired (directory, repository) entries in
// registration order.
func (w *Workspace) Roots() []Root {
	w.mu.Lock()
	defer w.mu.Unlock()

	roots := make([]Root, len(w.roots))
	copy(roots, w.roots)
	return roots
}

// Contains reports whether path lies inside any root. The test is
// structural; neither path nor root needs to exist.
func (w *Workspace) Contains(path string) bool {
	for _, r := range w.Roots() {
		if r.Dir.Contains(path) {
			return true
		}
	}
	return false
}

// ResolvePath expands uri to an absolute path. Strings carrying a URI
// scheme pass through unchanged; absolute paths are cleaned; relative
// paths resolve against the first root. The boolean is false when the
// input is relative and no root is open, which signals "cannot
// resolve", not an error.
func (w *Workspace) ResolvePath(uri string) (string, bool) {
	if uri == "" {
		return "", false
	}
	if vfs.SchemeOf(uri) != "" {
		return uri, true
	}
	if filepath.IsAbs(uri) {
		return filepath.Clean(uri), true
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.roots) == 0 {
		return "", false
	}
	return filepath.Join(w.roots[0].Path, uri), true
}

// RelativizePath expresses fullPath relative to the root yielding the
// shortest relative form, which prefers the deepest enclosing root
// when roots are nested. Ties keep the earliest-registered root. When
// no root contains fullPath the result is ("", fullPath).
func (w *Workspace) RelativizePath(fullPath string) (root string, rel string) {
	rel = fullPath
	if fullPath == "" {
		return "", rel
	}
	for _, r := range w.Roots() {
		if candidate, ok := r.Dir.Relativize(fullPath); ok && len(candidate) < len(rel) {
			root, rel = r.Path, candidate
		}
	}
	return root, rel
}
