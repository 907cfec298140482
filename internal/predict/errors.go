package predict

import "errors"

var (
	// ErrNoHost is returned by New when no host is supplied.
	ErrNoHost = errors.New("predict: host is required")

	// ErrNoBackend is returned by New when no backend is supplied.
	ErrNoBackend = errors.New("predict: backend is required")

	// ErrShuttingDown is returned when an operation races a shutdown.
	ErrShuttingDown = errors.New("predict: engine is shutting down")

	// ErrNotRunning is returned when the engine has not been initialized.
	ErrNotRunning = errors.New("predict: engine is not running")
)
