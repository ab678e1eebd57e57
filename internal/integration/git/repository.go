package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repository is a read-only handle on a git repository. Handles are
// shared between callers, so state mutation is limited to the destroy
// lifecycle: Destroy marks the handle dead, fires the registered
// callbacks once, and all later queries fail with ErrDestroyed.
type Repository struct {
	root string
	repo *gogit.Repository

	mu        sync.RWMutex
	destroyed bool
	onDestroy []func()

	// Status cache
	statusCache     *Status
	statusCacheTime time.Time
	statusCacheTTL  time.Duration
}

// openRepository opens the repository rooted at root.
func openRepository(root string, cacheTTL time.Duration) (*Repository, error) {
	repo, err := gogit.PlainOpen(root)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("open repository %s: %w", root, err)
	}

	return &Repository{
		root:           root,
		repo:           repo,
		statusCacheTTL: cacheTTL,
	}, nil
}

// discoverRoot walks from path toward the filesystem root until it
// finds a directory carrying a .git entry. Worktrees keep .git as a
// file rather than a directory, so any stat hit counts.
func discoverRoot(path string) (string, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolutize %s: %w", path, err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrRepositoryNotFound
		}
		dir = parent
	}
}

// Root returns the repository root path.
func (r *Repository) Root() string {
	return r.root
}

// Head returns the current HEAD reference. On an unborn branch the
// reference carries the branch name with an empty hash.
func (r *Repository) Head() (Reference, error) {
	r.mu.RLock()
	if r.destroyed {
		r.mu.RUnlock()
		return Reference{}, ErrDestroyed
	}
	r.mu.RUnlock()

	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return r.unbornHead()
		}
		return Reference{}, fmt.Errorf("resolve HEAD: %w", err)
	}

	name := ref.Name()
	if name == plumbing.HEAD {
		hash := ref.Hash().String()
		return Reference{
			Name:      hash,
			ShortName: shortHash(hash),
			Hash:      hash,
			Detached:  true,
		}, nil
	}

	return Reference{
		Name:      string(name),
		ShortName: name.Short(),
		Hash:      ref.Hash().String(),
	}, nil
}

// unbornHead reads the symbolic HEAD of a repository with no commits.
func (r *Repository) unbornHead() (Reference, error) {
	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil || head.Type() != plumbing.SymbolicReference {
		return Reference{}, ErrNoHead
	}
	target := head.Target()
	return Reference{
		Name:      string(target),
		ShortName: target.Short(),
	}, nil
}

// Branch returns the current branch short name. A detached HEAD yields
// ErrDetachedHead.
func (r *Repository) Branch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", err
	}
	if head.Detached {
		return "", ErrDetachedHead
	}
	return head.ShortName, nil
}

// Status returns the working tree status. Results are cached for the
// manager's TTL because full tree scans are expensive.
func (r *Repository) Status() (*Status, error) {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return nil, ErrDestroyed
	}
	if r.statusCache != nil && time.Since(r.statusCacheTime) < r.statusCacheTTL {
		cached := r.statusCache
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	status, err := r.freshStatus()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.statusCache = status
	r.statusCacheTime = time.Now()
	r.mu.Unlock()
	return status, nil
}

func (r *Repository) freshStatus() (*Status, error) {
	status := &Status{}

	if head, err := r.Head(); err == nil {
		status.HeadCommit = shortHash(head.Hash)
		if head.Detached {
			status.IsDetached = true
		} else {
			status.Branch = head.ShortName
		}
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	wtStatus, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}

	// go-git reports status as an unordered map; sort for stable output.
	paths := make([]string, 0, len(wtStatus))
	for path := range wtStatus {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		fs := wtStatus[path]
		switch {
		case fs.Staging == gogit.UpdatedButUnmerged || fs.Worktree == gogit.UpdatedButUnmerged:
			status.Conflicts = append(status.Conflicts, path)
		case fs.Worktree == gogit.Untracked:
			status.Untracked = append(status.Untracked, path)
		default:
			if fs.Staging != gogit.Unmodified {
				status.Staged = append(status.Staged, FileStatus{
					Path:    path,
					OldPath: fs.Extra,
					Status:  statusCodeFrom(fs.Staging),
					Staged:  true,
				})
			}
			if fs.Worktree != gogit.Unmodified {
				status.Unstaged = append(status.Unstaged, FileStatus{
					Path:   path,
					Status: statusCodeFrom(fs.Worktree),
				})
			}
		}
	}

	return status, nil
}

// Destroy marks the handle dead and fires the destroy callbacks.
// Destroy is idempotent; only the first call fires callbacks.
func (r *Repository) Destroy() {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.destroyed = true
	callbacks := r.onDestroy
	r.onDestroy = nil
	r.statusCache = nil
	r.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Destroyed reports whether the handle has been destroyed.
func (r *Repository) Destroyed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.destroyed
}

// OnDestroy registers fn to run when the handle is destroyed. If the
// handle is already dead, fn runs immediately.
func (r *Repository) OnDestroy(fn func()) {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		fn()
		return
	}
	r.onDestroy = append(r.onDestroy, fn)
	r.mu.Unlock()
}
