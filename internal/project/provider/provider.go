// Package provider defines the pluggable resolution contracts for
// project roots: how a URI becomes a Directory and how a Directory is
// associated with a version-control Repository. A Registry holds the
// registered providers in precedence order.
package provider

import "context"

// Directory answers path queries for a single root candidate. Handles
// are descriptive; the path they name does not have to exist.
type Directory interface {
	// Path returns the normalized path of the directory.
	Path() string

	// RealPath returns the path with symbolic links resolved when
	// possible, otherwise Path.
	RealPath() string

	// Exists reports whether the path currently names a directory on
	// its backing store.
	Exists() bool

	// Contains reports whether p is the directory itself or a path
	// beneath it, judged structurally.
	Contains(p string) bool

	// Relativize expresses p relative to the directory. The boolean is
	// false when p is not contained.
	Relativize(p string) (string, bool)
}

// Repository is a version-control association for a directory.
// Equality between repositories is reference identity.
type Repository interface {
	// Destroy releases the repository. Destroy is idempotent.
	Destroy()
}

// DestroyNotifier is an optional Repository capability. Repositories
// that announce their destruction let caches drop dead handles.
type DestroyNotifier interface {
	// OnDestroy registers fn to run when the repository is destroyed.
	OnDestroy(fn func())
}

// DirectoryProvider resolves a Directory from a URI. Returning nil
// means the provider cannot handle the URI.
type DirectoryProvider interface {
	DirectoryForURISync(uri string) Directory
}

// RepositoryProvider resolves a Repository for a directory. Returning
// (nil, nil) means the provider knows of no repository there; an error
// is a defect in the provider and propagates to the caller.
type RepositoryProvider interface {
	RepositoryForDirectory(ctx context.Context, dir Directory) (Repository, error)
}

// SyncRepositoryProvider is an optional RepositoryProvider capability
// used on the best-effort synchronous path taken while adding a root.
type SyncRepositoryProvider interface {
	RepositoryProvider

	// RepositoryForDirectorySync returns a repository for dir, or nil
	// without blocking on anything expensive.
	RepositoryForDirectorySync(dir Directory) Repository
}

// Disposable undoes a registration.
type Disposable interface {
	// Dispose removes the registration. Dispose is idempotent.
	Dispose()
}
