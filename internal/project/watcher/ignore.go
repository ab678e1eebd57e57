package watcher

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreList decides which paths are excluded from watching.
// Patterns use gitignore syntax:
//   - *.log            - match files ending in .log
//   - /build/          - match the build directory at the root
//   - **/node_modules/** - match anything under node_modules anywhere
//   - !important.log   - negate (keep) important.log
//
// Later patterns override earlier ones, and paths inside an excluded
// directory are themselves excluded.
type IgnoreList struct {
	mu       sync.RWMutex
	lines    []string
	patterns []gitignore.Pattern
	matcher  gitignore.Matcher
}

// NewIgnoreList creates an ignore list from the given patterns.
func NewIgnoreList(patterns ...string) *IgnoreList {
	il := &IgnoreList{}
	il.Add(patterns...)
	return il
}

// Add appends patterns to the list. Blank lines and # comments are
// skipped, so a gitignore file can be fed through line by line.
func (il *IgnoreList) Add(patterns ...string) {
	il.mu.Lock()
	defer il.mu.Unlock()

	for _, line := range patterns {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		il.lines = append(il.lines, trimmed)
		il.patterns = append(il.patterns, gitignore.ParsePattern(trimmed, nil))
	}
	il.matcher = gitignore.NewMatcher(il.patterns)
}

// AddFromFile loads patterns from a gitignore-format file.
func (il *IgnoreList) AddFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	il.Add(lines...)
	return nil
}

// Match returns true if the path should be ignored.
func (il *IgnoreList) Match(path string, isDir bool) bool {
	return il.MatchRelative(path, "", isDir)
}

// MatchRelative checks a path against the list relative to root, so
// anchored patterns like /build apply from root rather than from the
// filesystem root. An empty root matches the path as given.
func (il *IgnoreList) MatchRelative(path, root string, isDir bool) bool {
	il.mu.RLock()
	matcher := il.matcher
	il.mu.RUnlock()

	if matcher == nil {
		return false
	}
	return matcher.Match(splitComponents(path, root), isDir)
}

// splitComponents turns a path into the slash-separated components the
// gitignore matcher expects, relativized to root when root is a prefix.
func splitComponents(path, root string) []string {
	p := filepath.ToSlash(path)
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && rel != ".." && !strings.HasPrefix(rel, "../") {
			p = filepath.ToSlash(rel)
		}
	}
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." {
		return nil
	}
	return strings.Split(p, "/")
}

// Clear removes all patterns.
func (il *IgnoreList) Clear() {
	il.mu.Lock()
	defer il.mu.Unlock()
	il.lines = nil
	il.patterns = nil
	il.matcher = nil
}

// Count returns the number of patterns.
func (il *IgnoreList) Count() int {
	il.mu.RLock()
	defer il.mu.RUnlock()
	return len(il.patterns)
}

// Patterns returns a copy of the pattern lines.
func (il *IgnoreList) Patterns() []string {
	il.mu.RLock()
	defer il.mu.RUnlock()

	lines := make([]string, len(il.lines))
	copy(lines, il.lines)
	return lines
}

// DefaultIgnorePatterns are common patterns to exclude in most projects.
var DefaultIgnorePatterns = []string{
	// Version control
	".git/",
	".svn/",
	".hg/",

	// Dependencies
	"node_modules/",
	"vendor/",
	".venv/",
	"venv/",
	"__pycache__/",
	"*.pyc",

	// Build outputs
	"dist/",
	"build/",
	"out/",
	"target/",

	// IDE/Editor
	".idea/",
	".vscode/",
	"*.swp",
	"*.swo",
	"*~",

	// OS
	".DS_Store",
	"Thumbs.db",

	// Logs and temp
	"*.log",
	"tmp/",
}

// NewDefaultIgnoreList creates an IgnoreList with the default patterns.
func NewDefaultIgnoreList() *IgnoreList {
	return NewIgnoreList(DefaultIgnorePatterns...)
}
