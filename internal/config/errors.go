package config

import "errors"

// Configuration validation errors, returned by Config.Validate.
//
// Design decision: Package-level sentinel errors rather than errors
// created inline in Validate, so callers and tests can classify with
// errors.Is while the messages stay human-readable.
var (
	// ErrEmptyListen is returned when no listen address is configured.
	ErrEmptyListen = errors.New("empty listen address")

	// ErrInvalidMaxDocumentSize is returned when the fetch size ceiling
	// is zero or negative. A relay with no ceiling has unbounded
	// per-request memory.
	ErrInvalidMaxDocumentSize = errors.New("invalid max document size: must be positive")

	// ErrInvalidTimeout is returned when the sniff or fetch timeout is
	// not positive. A zero timeout would make every request fail
	// immediately.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidChunkSize is returned when the fetch chunk size is not
	// positive.
	ErrInvalidChunkSize = errors.New("invalid fetch chunk size: must be positive")

	// ErrInvalidSniffRange is returned when the sniff range is not
	// positive.
	ErrInvalidSniffRange = errors.New("invalid sniff range: must be positive")

	// ErrInvalidMaxConns is returned when the connection cap is negative.
	// Use 0 to disable the cap.
	ErrInvalidMaxConns = errors.New("invalid max connections: must be non-negative")

	// ErrConfigNotFound is returned by LoadConfigFile when the file does
	// not exist. Callers decide whether that is fatal based on whether
	// the path was explicit.
	ErrConfigNotFound = errors.New("configuration file not found")
)
