package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoUsername is returned when no username was given.
	ErrNoUsername = errors.New("no username specified: use --username")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is negative.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be non-negative")

	// ErrInvalidUserConcurrency is returned when the user concurrency is below 1.
	ErrInvalidUserConcurrency = errors.New("invalid user concurrency: must be at least 1")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrNoListFile is returned when the site list path is empty.
	ErrNoListFile = errors.New("no site list file specified")

	// ErrConflictingProxy is returned when --proxy and --tor are combined.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --proxy and --tor cannot be used together")

	// ErrInvalidProxy is returned when the proxy URL cannot be used.
	ErrInvalidProxy = errors.New("invalid proxy: expected http://, https://, socks5:// or socks5h:// URL with a host")
)
