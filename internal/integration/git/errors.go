package git

import "errors"

// Error types for git operations.
var (
	// ErrNotRepository indicates the path is not a git repository root.
	ErrNotRepository = errors.New("not a git repository")

	// ErrRepositoryNotFound indicates no repository root was found
	// walking up from the given path.
	ErrRepositoryNotFound = errors.New("repository not found")

	// ErrNoHead indicates the repository has no resolvable HEAD.
	ErrNoHead = errors.New("repository has no HEAD")

	// ErrDetachedHead indicates the repository is in detached HEAD state.
	ErrDetachedHead = errors.New("detached HEAD state")

	// ErrDestroyed indicates the repository handle has been destroyed.
	ErrDestroyed = errors.New("repository destroyed")

	// ErrManagerClosed indicates the manager has been closed.
	ErrManagerClosed = errors.New("manager closed")
)
