package osc

import "errors"

// Domain errors for the osc package.
//
// Validators wrap these so callers can classify a rejection:
//
//	if errors.Is(result.Err, osc.ErrOutOfRange) {
//	    // value was well-typed but outside the accepted range
//	}
var (
	// ErrArity is returned when a message carries the wrong number of arguments.
	ErrArity = errors.New("osc: wrong argument count")

	// ErrArgumentType is returned when an argument has an unexpected type.
	ErrArgumentType = errors.New("osc: wrong argument type")

	// ErrOutOfRange is returned when a numeric argument is outside its bounds.
	ErrOutOfRange = errors.New("osc: argument out of range")

	// ErrNotAllowed is returned when a string argument is not one of the accepted values.
	ErrNotAllowed = errors.New("osc: value not allowed")

	// ErrStateUnavailable is returned when a validator depends on switcher
	// state that has not been received yet.
	ErrStateUnavailable = errors.New("osc: switcher state unavailable")

	// ErrInvalidAddress is returned when an address is empty or does not start with '/'.
	ErrInvalidAddress = errors.New("osc: invalid address")

	// ErrNilHandler is returned when registering a nil validator or endpoint.
	ErrNilHandler = errors.New("osc: nil handler")

	// ErrInvalidTemplate is returned when an address template cannot be parsed or expanded.
	ErrInvalidTemplate = errors.New("osc: invalid address template")

	// ErrPanic wraps a value recovered from a panicking validator or endpoint.
	ErrPanic = errors.New("osc: handler panicked")
)
