package domain

import "errors"

// Adapter errors
var (
	// ErrNotFound indicates the requested entry does not exist on the
	// storage backend. Read-like operations surface it as an absence
	// value rather than a hard failure; callers check with errors.Is.
	ErrNotFound = errors.New("entry not found")

	// ErrAlreadyExists indicates the entry already exists
	ErrAlreadyExists = errors.New("entry already exists")

	// ErrPermissionDenied indicates insufficient permissions
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotDirectory indicates expected a directory but got a file
	ErrNotDirectory = errors.New("not a directory")

	// ErrNotFile indicates expected a file but got a directory
	ErrNotFile = errors.New("not a file")

	// ErrNetworkError indicates the transport connection failed or was lost
	ErrNetworkError = errors.New("network error")

	// ErrInvalidArgument indicates a missing or malformed operation
	// argument, detected before any network I/O
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrProxyUnsupported indicates the configured proxy kind cannot be
	// dialed by this build
	ErrProxyUnsupported = errors.New("proxy kind not supported")
)

// Config errors
var (
	// ErrConfigNotFound indicates config file not found
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates a malformed or incomplete configuration,
	// including unparseable endpoint and proxy descriptors
	ErrConfigInvalid = errors.New("invalid config")

	// ErrEndpointNotFound indicates referenced endpoint doesn't exist
	ErrEndpointNotFound = errors.New("endpoint not found")
)
