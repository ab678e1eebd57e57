package vfs

import (
	"path/filepath"
	"strings"
)

// Dir is a handle to a directory on a VFS. A handle is cheap and purely
// descriptive: the path it names does not have to exist. Strings that
// carry a URI scheme are kept verbatim so non-file roots keep their
// identity through containment and relativization checks.
type Dir struct {
	fs   VFS
	path string
}

// NewDir returns a directory handle for path on fs.
// Filesystem paths are made absolute and cleaned.
func NewDir(fs VFS, path string) *Dir {
	if SchemeOf(path) == "" {
		if abs, err := fs.Abs(path); err == nil {
			path = abs
		} else {
			path = fs.Clean(path)
		}
	}
	return &Dir{fs: fs, path: path}
}

// Path returns the normalized path of the directory.
func (d *Dir) Path() string { return d.path }

// RealPath returns the path with symbolic links resolved when the
// directory exists on the backing store; otherwise Path is returned
// unchanged.
func (d *Dir) RealPath() string {
	if SchemeOf(d.path) != "" {
		return d.path
	}
	if real, err := d.fs.RealPath(d.path); err == nil {
		return real
	}
	return d.path
}

// Exists reports whether the path currently names a directory on the
// backing store.
func (d *Dir) Exists() bool {
	if SchemeOf(d.path) != "" {
		return false
	}
	return d.fs.IsDir(d.path)
}

// Contains reports whether p is the directory itself or a path beneath
// it. The test is structural; neither path needs to exist.
func (d *Dir) Contains(p string) bool {
	if SchemeOf(d.path) == "" {
		p = d.fs.Clean(p)
	}
	if p == d.path {
		return true
	}
	return strings.HasPrefix(p, d.childPrefix())
}

// Relativize returns p expressed relative to the directory. The boolean
// is false when p is neither the directory nor beneath it.
func (d *Dir) Relativize(p string) (string, bool) {
	if SchemeOf(d.path) == "" {
		p = d.fs.Clean(p)
	}
	if p == d.path {
		return "", true
	}
	prefix := d.childPrefix()
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	return p[len(prefix):], true
}

// childPrefix returns the directory path with a trailing separator,
// suitable for prefix tests against descendant paths.
func (d *Dir) childPrefix() string {
	sep := string(filepath.Separator)
	if SchemeOf(d.path) != "" {
		sep = "/"
	}
	if strings.HasSuffix(d.path, sep) {
		return d.path
	}
	return d.path + sep
}
