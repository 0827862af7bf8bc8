package live_file

import (
	"errors"
	"fmt"
	"io/fs"
)

// Sentinel errors returned by store and handle operations.
var (
	// ErrNotFound is returned when a file cannot be checked out because it does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrReadFailed is returned when a file exists but could not be opened or read.
	ErrReadFailed = errors.New("file read failed")

	// ErrUnknownHandle is returned for an id that has no record in the store.
	// Seeing it means a handle outlived its own checkout.
	ErrUnknownHandle = errors.New("unknown file handle")

	// ErrClosed is returned when a LiveFile is used after Close.
	ErrClosed = errors.New("live file already closed")

	// ErrPollerRunning is returned by Start on a poller that is already running.
	ErrPollerRunning = errors.New("poller already running")
)

// LoadError describes a failed initial load of a file.
type LoadError struct {
	Path string
	Err  error
}

func newLoadError(path string, err error) *LoadError {
	return &LoadError{Path: path, Err: err}
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports ErrNotFound for missing files and ErrReadFailed for everything else.
func (e *LoadError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return errors.Is(e.Err, fs.ErrNotExist)
	case ErrReadFailed:
		return !errors.Is(e.Err, fs.ErrNotExist)
	}
	return false
}

func unknownHandle(id UID) error {
	return fmt.Errorf("%w: %s", ErrUnknownHandle, id)
}
