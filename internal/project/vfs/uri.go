package vfs

import (
	"errors"
	"net/url"
	"path/filepath"
	"regexp"
)

// ErrNotFileURI is returned when a URI does not use the file scheme.
var ErrNotFileURI = errors.New("vfs: not a file URI")

// schemePattern matches a URI scheme in authority form ("scheme://").
// Windows drive letters ("C:\...") do not qualify.
var schemePattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.-]*)://`)

// SchemeOf returns the URI scheme of s, or "" when s is a plain path.
func SchemeOf(s string) string {
	m := schemePattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

// PathToURI converts a filesystem path to a file:// URI.
func PathToURI(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// URIToPath converts a file:// URI back to a filesystem path.
func URIToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", ErrNotFileURI
	}
	return filepath.FromSlash(u.Path), nil
}
