package git

import (
	gogit "github.com/go-git/go-git/v5"
)

// StatusCode represents the status of a file in the working tree.
type StatusCode int

const (
	// StatusUnmodified indicates the file is unchanged.
	StatusUnmodified StatusCode = iota
	// StatusModified indicates the file has been modified.
	StatusModified
	// StatusAdded indicates the file is newly added.
	StatusAdded
	// StatusDeleted indicates the file has been deleted.
	StatusDeleted
	// StatusRenamed indicates the file has been renamed.
	StatusRenamed
	// StatusCopied indicates the file has been copied.
	StatusCopied
	// StatusUntracked indicates the file is not tracked by git.
	StatusUntracked
	// StatusConflict indicates a merge conflict.
	StatusConflict
)

// String returns the string representation of a StatusCode.
func (s StatusCode) String() string {
	switch s {
	case StatusUnmodified:
		return "unmodified"
	case StatusModified:
		return "modified"
	case StatusAdded:
		return "added"
	case StatusDeleted:
		return "deleted"
	case StatusRenamed:
		return "renamed"
	case StatusCopied:
		return "copied"
	case StatusUntracked:
		return "untracked"
	case StatusConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// statusCodeFrom maps a go-git status code onto the package's own.
func statusCodeFrom(c gogit.StatusCode) StatusCode {
	switch c {
	case gogit.Modified:
		return StatusModified
	case gogit.Added:
		return StatusAdded
	case gogit.Deleted:
		return StatusDeleted
	case gogit.Renamed:
		return StatusRenamed
	case gogit.Copied:
		return StatusCopied
	case gogit.Untracked:
		return StatusUntracked
	case gogit.UpdatedButUnmerged:
		return StatusConflict
	default:
		return StatusUnmodified
	}
}

// FileStatus represents the status of a single file.
type FileStatus struct {
	// Path is the file path relative to the repository root.
	Path string

	// OldPath is the original path for renamed files.
	OldPath string

	// Status indicates the type of change.
	Status StatusCode

	// Staged indicates whether this change is staged.
	Staged bool
}

// Status represents the working tree status.
type Status struct {
	// Branch is the current branch name, empty when detached.
	Branch string

	// Staged contains staged changes.
	Staged []FileStatus

	// Unstaged contains unstaged changes.
	Unstaged []FileStatus

	// Untracked contains untracked file paths.
	Untracked []string

	// Conflicts contains paths with merge conflicts.
	Conflicts []string

	// IsDetached indicates detached HEAD state.
	IsDetached bool

	// HeadCommit is the current HEAD commit hash (short).
	HeadCommit string
}

// HasChanges reports whether any changes exist, staged, unstaged,
// untracked or conflicting.
func (s *Status) HasChanges() bool {
	return len(s.Staged) > 0 || len(s.Unstaged) > 0 || len(s.Untracked) > 0 || len(s.Conflicts) > 0
}

// HasStagedChanges reports whether staged changes exist.
func (s *Status) HasStagedChanges() bool {
	return len(s.Staged) > 0
}

// HasConflicts reports whether merge conflicts exist.
func (s *Status) HasConflicts() bool {
	return len(s.Conflicts) > 0
}

// Reference represents a resolved git reference.
type Reference struct {
	// Name is the full reference name (e.g., "refs/heads/main"), or
	// the commit hash when detached.
	Name string

	// ShortName is the short name (e.g., "main").
	ShortName string

	// Hash is the commit hash this reference points to, empty on an
	// unborn branch.
	Hash string

	// Detached indicates HEAD points at a commit rather than a branch.
	Detached bool
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
