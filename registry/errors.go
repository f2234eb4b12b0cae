package registry

import "errors"

// Sentinel errors for consistent error handling.
var (
	ErrNotStarted      = errors.New("registry not started")
	ErrAlreadyStarted  = errors.New("registry already started")
	ErrPackageNotFound = errors.New("package not found")
	ErrVersionNotFound = errors.New("package version not found")
	ErrSyncFailed      = errors.New("repository sync failed")
)
