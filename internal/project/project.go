package project

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/inkwelldev/inkwell/internal/config"
	"github.com/inkwelldev/inkwell/internal/project/filestore"
	"github.com/inkwelldev/inkwell/internal/project/notify"
	"github.com/inkwelldev/inkwell/internal/project/provider"
	"github.com/inkwelldev/inkwell/internal/project/repocache"
	"github.com/inkwelldev/inkwell/internal/project/vfs"
	"github.com/inkwelldev/inkwell/internal/project/watcher"
	"github.com/inkwelldev/inkwell/internal/project/workspace"
)

// Project is the facade over the workspace model. The provider
// registry, repository cache, and workspace survive Open/Close cycles;
// the buffer store and watcher belong to one open session.
type Project struct {
	mu sync.RWMutex

	// Fixed after New.
	fs       vfs.VFS
	cfg      config.Config
	registry *provider.Registry
	ws       *workspace.Workspace
	cache    *repocache.Cache

	// Session state, reset by Open and Close.
	open      bool
	effective config.Config
	store     *filestore.FileStore
	watcher   watcher.Watcher
	pathSub   *notify.Subscription
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	fileHandlers []watcher.Handler

	// Watch reconciliation state. watchMu serializes reconciles and
	// guards watched; ignoreMu guards ignores and is taken by the
	// watcher's exclusion callback, so it is never held across watch
	// calls.
	watchMu sync.Mutex
	watched map[string]bool

	ignoreMu sync.RWMutex
	ignores  map[string]*watcher.IgnoreList
}

// Option configures a Project.
type Option func(*Project)

// WithConfig sets the configuration driving watcher behavior and
// buffer limits.
func WithConfig(cfg config.Config) Option {
	return func(p *Project) {
		p.cfg = cfg
	}
}

// WithVFS sets a custom file system implementation.
func WithVFS(fs vfs.VFS) Option {
	return func(p *Project) {
		p.fs = fs
	}
}

// WithWatcher sets a custom watcher implementation. The project takes
// ownership and closes it on Close; without this option Open builds a
// debounced fsnotify watcher when watching is enabled.
func WithWatcher(w watcher.Watcher) Option {
	return func(p *Project) {
		p.watcher = w
	}
}

// WithRegistry sets a custom provider registry. Without this option
// New creates one backed by the project's file system.
func WithRegistry(reg *provider.Registry) Option {
	return func(p *Project) {
		p.registry = reg
	}
}

// New creates a closed project. Providers registered and subscriptions
// taken before Open stay in effect across Open/Close cycles.
func New(opts ...Option) *Project {
	p := &Project{
		cfg:     config.Default(),
		watched: make(map[string]bool),
		ignores: make(map[string]*watcher.IgnoreList),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.fs == nil {
		p.fs = vfs.NewOSFS()
	}
	if p.registry == nil {
		p.registry = provider.NewRegistry(p.fs)
	}
	p.ws = workspace.New(p.registry)
	p.cache = repocache.New(p.registry)

	return p
}

// Open opens the project and adds the given roots; zero roots opens an
// empty project. The first local root may carry a settings file
// (.inkwell.toml or .inkwell.yml) adjusting watcher excludes and
// buffer limits for this session. Returns ErrAlreadyOpen when the
// project is already open.
func (p *Project) Open(_ context.Context, roots ...string) error {
	p.mu.Lock()
	if p.open {
		p.mu.Unlock()
		return ErrAlreadyOpen
	}

	effective, err := p.sessionConfig(roots)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	p.effective = effective

	var storeOpts []filestore.Option
	if effective.Buffers.MaxFileSize > 0 {
		storeOpts = append(storeOpts, filestore.WithMaxFileSize(effective.Buffers.MaxFileSize))
	}
	p.store = filestore.NewFileStoreWithOptions(p.fs, storeOpts...)

	// Watching is best effort: when the platform watcher cannot start
	// the project opens without one.
	if p.watcher == nil && effective.Watcher.Enabled {
		if w, werr := p.newWatcher(effective); werr == nil {
			p.watcher = w
		}
	}

	var runCtx context.Context
	runCtx, p.cancel = context.WithCancel(context.Background())
	p.open = true

	if p.watcher != nil {
		p.wg.Add(1)
		go p.processEvents(runCtx, p.watcher)
	}

	// Subscribe before the roots go in so their watches are set up by
	// the same path every later mutation takes.
	p.pathSub = p.ws.OnDidChangePaths(p.reconcileWatches)
	p.mu.Unlock()

	for _, root := range roots {
		p.ws.AddPath(root)
	}
	return nil
}

// sessionConfig layers the first root's project settings file, when
// present, over the configured base.
func (p *Project) sessionConfig(roots []string) (config.Config, error) {
	cfg := p.cfg
	if len(roots) == 0 || vfs.SchemeOf(roots[0]) != "" {
		return cfg, nil
	}
	root, err := filepath.Abs(roots[0])
	if err != nil {
		return cfg, nil
	}
	settings, found, err := config.LoadProjectSettings(root)
	if err != nil {
		return cfg, fmt.Errorf("project settings: %w", err)
	}
	if found {
		cfg = settings.Apply(cfg)
	}
	return cfg, nil
}

// newWatcher builds the debounced fsnotify watcher for one session.
func (p *Project) newWatcher(cfg config.Config) (watcher.Watcher, error) {
	opts := []watcher.WatcherOption{
		watcher.WithIgnoreFunc(p.ignorePath),
	}
	if cfg.Watcher.IgnoreHidden {
		opts = append(opts, watcher.WithIgnoreHidden(true))
	}
	if cfg.Watcher.MaxWatches > 0 {
		opts = append(opts, watcher.WithMaxWatches(cfg.Watcher.MaxWatches))
	}

	fsw, err := watcher.NewFSNotifyWatcher(opts...)
	if err != nil {
		return nil, err
	}
	return watcher.NewDebouncedWatcher(fsw, cfg.Watcher.Debounce()), nil
}

// Close closes the project: the watcher stops, open buffers are
// discarded, and the workspace is cleared without a change event. ctx
// bounds the wait for in-flight event processing. Returns ErrNotOpen
// when the project is not open.
func (p *Project) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return ErrNotOpen
	}
	p.open = false
	sub := p.pathSub
	cancel := p.cancel
	w := p.watcher
	store := p.store
	p.pathSub = nil
	p.cancel = nil
	p.watcher = nil
	p.store = nil
	p.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	cancel()

	// Closing the watcher closes its channels, which unblocks the
	// event goroutine.
	if w != nil {
		_ = w.Close()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if store != nil {
		// Force close discards unsaved buffer changes.
		_ = store.CloseAll(ctx, true)
	}
	p.ws.Close()

	p.watchMu.Lock()
	p.watched = make(map[string]bool)
	p.watchMu.Unlock()

	p.ignoreMu.Lock()
	p.ignores = make(map[string]*watcher.IgnoreList)
	p.ignoreMu.Unlock()

	return nil
}

// IsOpen reports whether the project is open.
func (p *Project) IsOpen() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.open
}

// AddPath opens uri as an additional root and reports whether the root
// set changed. Returns false while the project is closed.
func (p *Project) AddPath(uri string) bool {
	if !p.IsOpen() {
		return false
	}
	return p.ws.AddPath(uri)
}

// RemovePath closes the root identified by pathOrURI and reports
// whether a root was removed. Returns false while the project is
// closed.
func (p *Project) RemovePath(pathOrURI string) bool {
	if !p.IsOpen() {
		return false
	}
	return p.ws.RemovePath(pathOrURI)
}

// SetPaths replaces the whole root set. No-op while the project is
// closed.
func (p *Project) SetPaths(paths []string) {
	if !p.IsOpen() {
		return
	}
	p.ws.SetPaths(paths)
}

// Paths returns the current root paths in registration order.
func (p *Project) Paths() []string {
	return p.ws.Paths()
}

// Directories returns the root directory handles in registration
// order.
func (p *Project) Directories() []provider.Directory {
	return p.ws.Directories()
}

// Repositories returns each root's repository in registration order;
// entries are nil where no provider claimed the root.
func (p *Project) Repositories() []provider.Repository {
	return p.ws.Repositories()
}

// Contains reports whether path lies inside any root.
func (p *Project) Contains(path string) bool {
	return p.ws.Contains(path)
}

// ResolvePath expands uri to an absolute path against the roots.
func (p *Project) ResolvePath(uri string) (string, bool) {
	return p.ws.ResolvePath(uri)
}

// RelativizePath expresses fullPath relative to its deepest enclosing
// root.
func (p *Project) RelativizePath(fullPath string) (root, rel string) {
	return p.ws.RelativizePath(fullPath)
}

// OnDidChangePaths subscribes fn to root path changes. Subscriptions
// survive Open/Close cycles.
func (p *Project) OnDidChangePaths(fn notify.Observer) *notify.Subscription {
	return p.ws.OnDidChangePaths(fn)
}

// RepositoryForDirectory resolves the repository for dir through the
// memoizing cache. Concurrent calls for one directory share a single
// lookup; ctx bounds only this caller's wait.
func (p *Project) RepositoryForDirectory(ctx context.Context, dir provider.Directory) (provider.Repository, error) {
	return p.cache.RepositoryForDirectory(ctx, dir)
}

// RegisterDirectoryProvider adds dp at highest precedence. The
// returned Disposable removes exactly this registration.
func (p *Project) RegisterDirectoryProvider(dp provider.DirectoryProvider) provider.Disposable {
	return p.registry.RegisterDirectoryProvider(dp)
}

// RegisterRepositoryProvider adds rp at highest precedence. Roots
// without a repository are re-resolved so the new provider can claim
// them retroactively. Removing the registration triggers nothing.
func (p *Project) RegisterRepositoryProvider(rp provider.RepositoryProvider) provider.Disposable {
	d := p.registry.RegisterRepositoryProvider(rp)

	for _, repo := range p.ws.Repositories() {
		if repo == nil {
			p.ws.SetPaths(p.ws.Paths())
			break
		}
	}
	return d
}

// OpenBuffer opens the file at path in the buffer store, returning the
// existing buffer when one is already open for the path.
func (p *Project) OpenBuffer(ctx context.Context, path string) (*filestore.Document, error) {
	store, err := p.openStore()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, path)
}

// BufferForPath returns the open buffer for path, if any.
func (p *Project) BufferForPath(path string) (*filestore.Document, bool) {
	store, err := p.openStore()
	if err != nil {
		return nil, false
	}
	return store.Get(path)
}

// Buffers returns all open buffers sorted by path.
func (p *Project) Buffers() []*filestore.Document {
	store, err := p.openStore()
	if err != nil {
		return nil
	}
	return store.OpenDocuments()
}

// DirtyBuffers returns the open buffers with unsaved changes.
func (p *Project) DirtyBuffers() []*filestore.Document {
	store, err := p.openStore()
	if err != nil {
		return nil
	}
	return store.DirtyDocuments()
}

// CloseBuffer closes the buffer at path. A dirty buffer is kept unless
// force is set.
func (p *Project) CloseBuffer(ctx context.Context, path string, force bool) error {
	store, err := p.openStore()
	if err != nil {
		return err
	}
	return store.Close(ctx, path, force)
}

// openStore returns the session's buffer store or ErrNotOpen.
func (p *Project) openStore() (*filestore.FileStore, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.open || p.store == nil {
		return nil, ErrNotOpen
	}
	return p.store, nil
}
