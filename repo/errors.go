package repo

import "errors"

var (
	// ErrSync indicates a git operation against the upstream repository
	// failed. The wrapped message carries the subcommand and git's output.
	ErrSync = errors.New("repository sync failed")

	// ErrNotFound indicates the requested package or version has no
	// definition file in the clone.
	ErrNotFound = errors.New("package definition not found")
)
