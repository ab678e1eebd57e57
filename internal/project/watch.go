package project

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/inkwelldev/inkwell/internal/project/vfs"
	"github.com/inkwelldev/inkwell/internal/project/watcher"
)

// OnFileChange registers a handler for debounced file change events
// under the watched roots. Handlers survive Open/Close cycles; a
// handler registered while the project is closed takes effect on the
// next Open.
func (p *Project) OnFileChange(handler watcher.Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fileHandlers = append(p.fileHandlers, handler)
}

// reconcileWatches aligns the watched root set with the current path
// list: local roots gained since the last reconcile are watched
// recursively, roots no longer present lose their whole subtree.
// Failures are swallowed; watching is an overlay on the path store,
// never a veto.
func (p *Project) reconcileWatches(paths []string) {
	p.mu.RLock()
	w := p.watcher
	open := p.open
	cfg := p.effective
	p.mu.RUnlock()

	if !open || w == nil {
		return
	}

	p.watchMu.Lock()
	defer p.watchMu.Unlock()

	desired := make(map[string]bool, len(paths))
	for _, path := range paths {
		// Roots with a URI scheme have no local subtree to watch.
		if vfs.SchemeOf(path) == "" {
			desired[path] = true
		}
	}

	var added, removed []string
	for root := range p.watched {
		if !desired[root] {
			removed = append(removed, root)
		}
	}
	for root := range desired {
		if !p.watched[root] {
			added = append(added, root)
		}
	}
	p.watched = desired

	p.ignoreMu.Lock()
	for _, root := range removed {
		delete(p.ignores, root)
	}
	for _, root := range added {
		p.ignores[root] = newRootIgnoreList(root, cfg.Watcher.Exclude)
	}
	p.ignoreMu.Unlock()

	for _, root := range removed {
		p.unwatchSubtree(w, root, desired)
	}
	for _, root := range added {
		_ = w.WatchRecursive(root)
	}
}

// unwatchSubtree removes every watch at or below root, keeping watches
// a surviving root still owns (nested roots overlap).
func (p *Project) unwatchSubtree(w watcher.Watcher, root string, keep map[string]bool) {
	for _, path := range w.WatchedPaths() {
		if !isWithin(path, root) {
			continue
		}
		owned := false
		for other := range keep {
			if isWithin(path, other) {
				owned = true
				break
			}
		}
		if owned {
			continue
		}
		_ = w.Unwatch(path)
	}
}

// ignorePath is the watcher's exclusion callback. The deepest root
// containing the path owns its rules, so anchored patterns and each
// root's .gitignore apply relative to that root.
func (p *Project) ignorePath(path string, isDir bool) bool {
	p.ignoreMu.RLock()
	defer p.ignoreMu.RUnlock()

	var owner string
	var rules *watcher.IgnoreList
	for root, il := range p.ignores {
		if isWithin(path, root) && len(root) > len(owner) {
			owner, rules = root, il
		}
	}
	if rules == nil || path == owner {
		return false
	}
	return rules.MatchRelative(path, owner, isDir)
}

// newRootIgnoreList builds the exclusion rules for one root: the
// defaults, the configured exclude patterns, and the root's own
// .gitignore.
func newRootIgnoreList(root string, exclude []string) *watcher.IgnoreList {
	il := watcher.NewDefaultIgnoreList()
	il.Add(exclude...)
	// Roots without a .gitignore just skip this.
	_ = il.AddFromFile(filepath.Join(root, ".gitignore"))
	return il
}

// isWithin reports whether path is root itself or lies below it.
func isWithin(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

// processEvents drains the watcher until the session ends or the
// watcher's channels close.
func (p *Project) processEvents(ctx context.Context, w watcher.Watcher) {
	defer p.wg.Done()

	events := w.Events()
	errors := w.Errors()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			p.handleFileEvent(ctx, event)
		case _, ok := <-errors:
			if !ok {
				return
			}
			// Watch errors are advisory; the watcher keeps running.
		}
	}
}

// handleFileEvent reloads clean open buffers on external writes, then
// fans the event out to subscribers.
func (p *Project) handleFileEvent(ctx context.Context, event watcher.Event) {
	p.mu.RLock()
	store := p.store
	autoReload := p.effective.Buffers.AutoReload
	handlers := make([]watcher.Handler, len(p.fileHandlers))
	copy(handlers, p.fileHandlers)
	p.mu.RUnlock()

	if autoReload && store != nil && event.Op.Has(watcher.OpWrite) {
		if doc, ok := store.Get(event.Path); ok && !doc.IsDirty() {
			_ = store.Reload(ctx, event.Path, false)
		}
	}

	for _, handler := range handlers {
		handler(event)
	}
}
