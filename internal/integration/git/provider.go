package git

import (
	"context"
	"errors"

	"github.com/inkwelldev/inkwell/internal/project/provider"
	"github.com/inkwelldev/inkwell/internal/project/vfs"
)

// Provider resolves directories to their enclosing repositories
// through a Manager. It serves both the asynchronous and synchronous
// provider contracts consumed by the project layer.
type Provider struct {
	manager *Manager
}

var (
	_ provider.RepositoryProvider     = (*Provider)(nil)
	_ provider.SyncRepositoryProvider = (*Provider)(nil)
)

// NewProvider creates a provider resolving through m.
func NewProvider(m *Manager) *Provider {
	return &Provider{manager: m}
}

// RepositoryForDirectory resolves dir to its enclosing repository.
// A directory outside any repository yields (nil, nil).
func (p *Provider) RepositoryForDirectory(_ context.Context, dir provider.Directory) (provider.Repository, error) {
	repo, err := p.lookup(dir)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		// Explicit nil keeps the interface value nil.
		return nil, nil
	}
	return repo, nil
}

// RepositoryForDirectorySync resolves dir without blocking on anything
// slower than a filesystem walk, or returns nil.
func (p *Provider) RepositoryForDirectorySync(dir provider.Directory) provider.Repository {
	repo, err := p.lookup(dir)
	if err != nil || repo == nil {
		return nil
	}
	return repo
}

func (p *Provider) lookup(dir provider.Directory) (*Repository, error) {
	path := dir.Path()
	if vfs.SchemeOf(path) != "" {
		// Only local directories can hold a repository.
		return nil, nil
	}

	repo, err := p.manager.Discover(path)
	if err != nil {
		if errors.Is(err, ErrRepositoryNotFound) || errors.Is(err, ErrNotRepository) {
			return nil, nil
		}
		return nil, err
	}
	return repo, nil
}
