package project

import "errors"

// Standard errors returned by the project facade.
var (
	// ErrNotOpen indicates no project is currently open.
	ErrNotOpen = errors.New("no project open")

	// ErrAlreadyOpen indicates the project is already open.
	ErrAlreadyOpen = errors.New("project already open")

	// ErrInvalidState indicates serialized project state that cannot
	// be decoded.
	ErrInvalidState = errors.New("invalid project state")
)
