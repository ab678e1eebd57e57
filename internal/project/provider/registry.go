package provider

import (
	"sync"

	"github.com/inkwelldev/inkwell/internal/project/vfs"
)

// Registry holds directory and repository providers in precedence
// order: most recently registered first, with a built-in default
// directory provider consulted last. Provider lists are snapshotted
// before iteration, so a provider callback may register or remove
// providers re-entrantly.
//
// Provider panics are not recovered here; a misbehaving provider is a
// defect in the provider, not a condition the registry absorbs.
type Registry struct {
	mu       sync.RWMutex
	nextID   uint64
	dirs     []dirEntry
	repos    []repoEntry
	fallback DirectoryProvider
}

type dirEntry struct {
	id uint64
	p  DirectoryProvider
}

type repoEntry struct {
	id uint64
	p  RepositoryProvider
}

// NewRegistry creates a registry whose default directory provider
// serves handles backed by fs. A nil fs means the operating system
// file system.
func NewRegistry(fs vfs.VFS) *Registry {
	if fs == nil {
		fs = vfs.NewOSFS()
	}
	return &Registry{fallback: &defaultDirectoryProvider{fs: fs}}
}

// RegisterDirectoryProvider inserts p at the highest precedence and
// returns a Disposable that removes exactly this registration. The
// same provider value may be registered more than once; each
// registration is removed independently.
func (r *Registry) RegisterDirectoryProvider(p DirectoryProvider) Disposable {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.dirs = append([]dirEntry{{id: id, p: p}}, r.dirs...)
	r.mu.Unlock()

	return NewDisposable(func() { r.removeDirectoryProvider(id) })
}

// RegisterRepositoryProvider inserts p at the highest precedence and
// returns a Disposable that removes exactly this registration.
func (r *Registry) RegisterRepositoryProvider(p RepositoryProvider) Disposable {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.repos = append([]repoEntry{{id: id, p: p}}, r.repos...)
	r.mu.Unlock()

	return NewDisposable(func() { r.removeRepositoryProvider(id) })
}

func (r *Registry) removeDirectoryProvider(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.dirs {
		if e.id == id {
			r.dirs = append(r.dirs[:i], r.dirs[i+1:]...)
			return
		}
	}
}

func (r *Registry) removeRepositoryProvider(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.repos {
		if e.id == id {
			r.repos = append(r.repos[:i], r.repos[i+1:]...)
			return
		}
	}
}

// DirectoryProviders returns the registered directory providers in
// precedence order. The built-in default provider is not included.
func (r *Registry) DirectoryProviders() []DirectoryProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]DirectoryProvider, len(r.dirs))
	for i, e := range r.dirs {
		out[i] = e.p
	}
	return out
}

// RepositoryProviders returns the registered repository providers in
// precedence order.
func (r *Registry) RepositoryProviders() []RepositoryProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RepositoryProvider, len(r.repos))
	for i, e := range r.repos {
		out[i] = e.p
	}
	return out
}

// ResolveDirectory resolves uri through the directory providers in
// precedence order. The default provider answers when none match, so
// the result is never nil.
func (r *Registry) ResolveDirectory(uri string) Directory {
	for _, p := range r.DirectoryProviders() {
		if d := p.DirectoryForURISync(uri); d != nil {
			return d
		}
	}
	return r.fallback.DirectoryForURISync(uri)
}

// ResolveRepositorySync walks the repository providers that support
// synchronous resolution, in precedence order, and returns the first
// answer. It returns nil when no provider claims the directory. This
// is the best-effort path taken while adding a root; the authoritative
// path is the asynchronous lookup.
func (r *Registry) ResolveRepositorySync(dir Directory) Repository {
	for _, p := range r.RepositoryProviders() {
		sp, ok := p.(SyncRepositoryProvider)
		if !ok {
			continue
		}
		if repo := sp.RepositoryForDirectorySync(dir); repo != nil {
			return repo
		}
	}
	return nil
}

// defaultDirectoryProvider is the fallback of last resort: it always
// produces a handle. file URIs are converted to local paths; strings
// with other schemes are kept verbatim.
type defaultDirectoryProvider struct {
	fs vfs.VFS
}

// Ensure defaultDirectoryProvider implements DirectoryProvider.
var _ DirectoryProvider = (*defaultDirectoryProvider)(nil)

func (p *defaultDirectoryProvider) DirectoryForURISync(uri string) Directory {
	if path, err := vfs.URIToPath(uri); err == nil {
		return vfs.NewDir(p.fs, path)
	}
	return vfs.NewDir(p.fs, uri)
}
