package switcher

import "errors"

// Domain errors for the switcher package.
var (
	// ErrQueueFull is returned when the command queue has no room. The command
	// is discarded; callers should not retry synchronously.
	ErrQueueFull = errors.New("switcher: command queue full")

	// ErrStopped is returned when a command is issued after Stop.
	ErrStopped = errors.New("switcher: bridge stopped")

	// ErrInvalidCommand is returned for commands with missing or malformed parameters.
	ErrInvalidCommand = errors.New("switcher: invalid command")

	// ErrInvalidState is returned when a state message cannot be decoded.
	ErrInvalidState = errors.New("switcher: invalid state message")
)
