// Package git resolves directories to their enclosing Git
// repositories and exposes read-only repository state.
//
// # Architecture
//
// The package is organized around three types:
//
//   - Manager: discovers repository roots and memoizes one Repository
//     handle per root
//   - Repository: a go-git backed handle with head, branch and working
//     tree status queries plus an explicit destroy lifecycle
//   - Provider: adapts a Manager to the repository provider contracts
//     consumed by the project layer
//
// # Usage
//
// Create a manager and resolve repositories from any path inside them:
//
//	mgr := git.NewManager(git.ManagerConfig{})
//	defer mgr.Close()
//
//	repo, err := mgr.Discover("/path/to/project/src")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	status, err := repo.Status()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("branch: %s, modified: %d\n", status.Branch, len(status.Unstaged))
//
// # Handle Sharing
//
// Discover returns the same *Repository for every path under one root,
// so callers holding handles to nested directories share state and see
// a single Destroy. Destroying a handle removes it from the manager;
// the next Discover opens a fresh one.
//
// # Status Caching
//
// Status results are cached for a short TTL because working tree scans
// are expensive relative to how often editors poll them.
//
// # Thread Safety
//
// All operations are safe for concurrent use.
package git
