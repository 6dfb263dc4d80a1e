package domain

import "errors"

// Errors returned across package boundaries. Check them with errors.Is.
var (
	// ErrUnknownCommand is returned when the host invokes a command name this
	// service never registered.
	ErrUnknownCommand = errors.New("songza: unknown command")

	// ErrWorkerPoolFull is returned when every worker slot is busy.
	ErrWorkerPoolFull = errors.New("songza: too many commands in flight")

	ErrAlreadyRunning  = errors.New("songza: already running")
	ErrNotRunning      = errors.New("songza: not running")
	ErrShutdownTimeout = errors.New("songza: shutdown timeout")
	ErrInvalidConfig   = errors.New("songza: invalid configuration")
)

// Feed failure causes. They are logged and counted but collapse into a single
// "absent document" result at the fetch boundary.
var (
	ErrFeedTransport    = errors.New("feed: transport failure")
	ErrFeedStatus       = errors.New("feed: unexpected status")
	ErrFeedFormat       = errors.New("feed: malformed document")
	ErrFeedRootMismatch = errors.New("feed: unexpected root element")
)
