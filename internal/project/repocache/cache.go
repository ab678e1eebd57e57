// Package repocache memoizes asynchronous repository resolution keyed
// by directory real path, guaranteeing at most one concurrent
// resolution per path across all providers.
package repocache

import (
	"context"
	"sync"

	"github.com/inkwelldev/inkwell/internal/project/provider"
)

// Cache deduplicates repository lookups by the directory's real path.
// Callers racing on one path attach to the same in-flight lookup and
// observe the same eventual repository value, so provider work and
// repository handles are never duplicated for a path.
//
// A lookup that resolves to no repository is forgotten immediately, so
// a provider registered later can be retried for the same path. A
// lookup that finds a repository is retained until the repository
// reports its own destruction or the process exits.
type Cache struct {
	mu       sync.Mutex
	registry *provider.Registry
	lookups  map[string]*lookup
}

// lookup is one in-flight or completed resolution. done is closed once
// repo and err are final.
type lookup struct {
	done chan struct{}
	repo provider.Repository
	err  error
}

func (l *lookup) wait(ctx context.Context) (provider.Repository, error) {
	select {
	case <-l.done:
		return l.repo, l.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// New creates a cache that resolves through reg.
func New(reg *provider.Registry) *Cache {
	return &Cache{
		registry: reg,
		lookups:  make(map[string]*lookup),
	}
}

// RepositoryForDirectory returns the repository backing dir, or nil
// when no provider claims it. Every registered provider is queried
// concurrently and the first non-nil answer in provider precedence
// order wins, regardless of completion order. A provider error fails
// the lookup for every waiter and evicts the entry so the path stays
// retryable.
//
// ctx bounds only this caller's wait. The resolution itself is not
// cancellable: once started it runs to completion and its outcome is
// cached as usual.
func (c *Cache) RepositoryForDirectory(ctx context.Context, dir provider.Directory) (provider.Repository, error) {
	key := dir.RealPath()

	c.mu.Lock()
	if l, ok := c.lookups[key]; ok {
		c.mu.Unlock()
		return l.wait(ctx)
	}
	l := &lookup{done: make(chan struct{})}
	c.lookups[key] = l
	c.mu.Unlock()

	// Snapshot the providers at lookup start; registrations that land
	// later see the path on their retry.
	go c.resolve(key, l, c.registry.RepositoryProviders(), dir)

	return l.wait(ctx)
}

// resolve queries every provider and publishes the outcome to waiters.
func (c *Cache) resolve(key string, l *lookup, providers []provider.RepositoryProvider, dir provider.Directory) {
	type answer struct {
		repo provider.Repository
		err  error
	}
	answers := make([]answer, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p provider.RepositoryProvider) {
			defer wg.Done()
			repo, err := p.RepositoryForDirectory(context.Background(), dir)
			answers[i] = answer{repo: repo, err: err}
		}(i, p)
	}
	wg.Wait()

	// Selection is by provider precedence, not completion order. Any
	// provider fault poisons the whole lookup.
	var firstErr error
	for _, a := range answers {
		if a.err != nil {
			firstErr = a.err
			break
		}
	}

	var repo provider.Repository
	if firstErr == nil {
		for _, a := range answers {
			if a.repo != nil {
				repo = a.repo
				break
			}
		}
	}

	// Register the eviction hook before any waiter can hold the
	// repository, so destruction observed by a caller is already wired
	// to drop the entry.
	if repo != nil {
		if dn, ok := repo.(provider.DestroyNotifier); ok {
			dn.OnDestroy(func() { c.evict(key, l) })
		}
	}

	c.mu.Lock()
	l.repo, l.err = repo, firstErr
	if repo == nil {
		// "No repository" and provider faults stay retryable.
		if c.lookups[key] == l {
			delete(c.lookups, key)
		}
	}
	c.mu.Unlock()
	close(l.done)
}

// evict drops the entry for key if it still belongs to l.
func (c *Cache) evict(key string, l *lookup) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lookups[key] == l {
		delete(c.lookups, key)
	}
}
