package git

import (
	"sync"
	"sync/atomic"
	"time"
)

// Manager discovers repositories and hands out one shared Repository
// per root. A destroyed handle drops out of the manager, so the next
// lookup of its root opens a fresh one.
type Manager struct {
	mu     sync.Mutex
	repos  map[string]*Repository
	closed atomic.Bool

	statusCacheTTL time.Duration
}

// ManagerConfig configures a git manager.
type ManagerConfig struct {
	// StatusCacheTTL is how long to cache status results.
	// Defaults to 1 second.
	StatusCacheTTL time.Duration
}

// NewManager creates a new git manager.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.StatusCacheTTL <= 0 {
		cfg.StatusCacheTTL = time.Second
	}

	return &Manager{
		repos:          make(map[string]*Repository),
		statusCacheTTL: cfg.StatusCacheTTL,
	}
}

// Open opens the repository rooted at root, returning the existing
// shared handle when one is alive.
func (m *Manager) Open(root string) (*Repository, error) {
	if m.closed.Load() {
		return nil, ErrManagerClosed
	}

	m.mu.Lock()
	if repo, ok := m.repos[root]; ok && !repo.Destroyed() {
		m.mu.Unlock()
		return repo, nil
	}
	m.mu.Unlock()

	repo, err := openRepository(root, m.statusCacheTTL)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if existing, ok := m.repos[root]; ok && !existing.Destroyed() {
		// Lost the race; share the winner's handle.
		m.mu.Unlock()
		return existing, nil
	}
	m.repos[root] = repo
	m.mu.Unlock()

	repo.OnDestroy(func() { m.evict(root, repo) })
	return repo, nil
}

// Discover finds and opens the repository containing path. It walks up
// the directory tree looking for a .git entry.
func (m *Manager) Discover(path string) (*Repository, error) {
	if m.closed.Load() {
		return nil, ErrManagerClosed
	}

	root, err := discoverRoot(path)
	if err != nil {
		return nil, err
	}
	return m.Open(root)
}

// IsRepository reports whether path is inside a git repository.
func (m *Manager) IsRepository(path string) bool {
	_, err := discoverRoot(path)
	return err == nil
}

// evict drops the handle from the map unless the root was already
// reopened with a fresh one.
func (m *Manager) evict(root string, repo *Repository) {
	m.mu.Lock()
	if m.repos[root] == repo {
		delete(m.repos, root)
	}
	m.mu.Unlock()
}

// Close destroys every open handle and rejects further lookups.
func (m *Manager) Close() error {
	if m.closed.Swap(true) {
		return nil
	}

	m.mu.Lock()
	repos := make([]*Repository, 0, len(m.repos))
	for _, repo := range m.repos {
		repos = append(repos, repo)
	}
	m.repos = make(map[string]*Repository)
	m.mu.Unlock()

	for _, repo := range repos {
		repo.Destroy()
	}
	return nil
}
