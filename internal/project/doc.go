// Package project ties the workspace model together behind one facade:
// root directories and their repository associations, provider
// registration, repository resolution, open buffers, file watching,
// and session serialization.
//
// # Architecture
//
// The facade composes these components:
//
//   - workspace.Workspace: ordered root directories paired with repositories
//   - provider.Registry: priority-ordered directory and repository providers
//   - repocache.Cache: asynchronous memoized repository resolution
//   - filestore.FileStore: open buffers with dirty tracking
//   - watcher.Watcher: debounced, filtered change detection per root
//
// # Quick Start
//
// Open a project and work with its roots:
//
//	proj := project.New()
//	if err := proj.Open(ctx, "/path/to/workspace"); err != nil {
//	    log.Fatal(err)
//	}
//	defer proj.Close(ctx)
//
//	proj.AddPath("/path/to/another")
//	for _, root := range proj.Paths() {
//	    fmt.Println(root)
//	}
//
// Repository providers plug in directly or through the service hub:
//
//	disp := proj.RegisterRepositoryProvider(gitProvider)
//	defer disp.Dispose()
//
//	// or, version gated:
//	disp, err := proj.ConsumeServices(hub)
//
// # Serialization
//
// Serialize captures the open roots and buffers as JSON; Restore
// rebuilds them. Records written by versions that stored a single root
// path are migrated on the way in.
//
// # File Watching
//
// Every local root is watched recursively while the project is open.
// Watches follow the root set: adding a root watches it, removing a
// root drops its subtree. Exclusion rules combine built-in patterns,
// configured excludes, and each root's .gitignore.
//
//	proj.OnFileChange(func(event watcher.Event) {
//	    if event.Op.Has(watcher.OpWrite) {
//	        // externally modified
//	    }
//	})
//
// # Thread Safety
//
// The facade and its components are safe for concurrent use. Provider
// callbacks, repository destruction, and observer callbacks run
// outside internal locks and may re-enter the project.
package project
