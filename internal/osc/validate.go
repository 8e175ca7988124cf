package osc

import (
	"fmt"
	"strings"
)

// Validator decides whether a message's arguments may reach its endpoint.
//
// Validate returns nil to accept. Any error rejects the message; the error
// text becomes the detail of the ValidationRejected drop event. Validators
// must not have side effects. Validators that need switcher state read it
// through a closure over a cache that synchronises itself.
type Validator interface {
	Validate(args Arguments) error
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(args Arguments) error

// Validate calls f(args).
func (f ValidatorFunc) Validate(args Arguments) error {
	return f(args)
}

// Bounds reports the current inclusive range for a value. ok is false when
// the range is not known yet.
type Bounds func() (lo, hi int, ok bool)

// NoArgs accepts only messages with zero arguments.
func NoArgs() Validator {
	return Arity(0)
}

// Arity accepts messages with exactly n arguments of any type.
func Arity(n int) Validator {
	return ValidatorFunc(func(args Arguments) error {
		if len(args) != n {
			return fmt.Errorf("%w: got %d, want %d", ErrArity, len(args), n)
		}
		return nil
	})
}

// Int accepts a single integer argument in [lo, hi].
func Int(lo, hi int) Validator {
	return IntFunc(func() (int, int, bool) { return lo, hi, true })
}

// IntFunc accepts a single integer argument inside the range reported by
// bounds at dispatch time. It rejects with ErrStateUnavailable when bounds
// is not yet known.
func IntFunc(bounds Bounds) Validator {
	return ValidatorFunc(func(args Arguments) error {
		if err := exactlyOne(args); err != nil {
			return err
		}
		n, err := args.Int(0)
		if err != nil {
			return err
		}
		lo, hi, ok := bounds()
		if !ok {
			return ErrStateUnavailable
		}
		if n < lo || n > hi {
			return fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, n, lo, hi)
		}
		return nil
	})
}

// Number accepts a single numeric argument in [lo, hi].
func Number(lo, hi float64) Validator {
	return ValidatorFunc(func(args Arguments) error {
		if err := exactlyOne(args); err != nil {
			return err
		}
		f, err := args.Float(0)
		if err != nil {
			return err
		}
		if f < lo || f > hi {
			return fmt.Errorf("%w: %g not in [%g, %g]", ErrOutOfRange, f, lo, hi)
		}
		return nil
	})
}

// Bool accepts a single OSC boolean argument (T or F type tag).
func Bool() Validator {
	return ValidatorFunc(func(args Arguments) error {
		if err := exactlyOne(args); err != nil {
			return err
		}
		if _, ok := args[0].(bool); !ok {
			return fmt.Errorf("%w: argument 0 is %s, want bool", ErrArgumentType, typeName(args[0]))
		}
		return nil
	})
}

// Toggle accepts a single boolean, or a number equal to 0 or 1.
func Toggle() Validator {
	return ValidatorFunc(func(args Arguments) error {
		if err := exactlyOne(args); err != nil {
			return err
		}
		_, err := args.Bool(0)
		return err
	})
}

// Trigger accepts a bare message, or a single toggle value. Buttons on most
// control surfaces send 1 on press and 0 on release; endpoints act only on
// the press (see Pressed).
func Trigger() Validator {
	toggle := Toggle()
	return ValidatorFunc(func(args Arguments) error {
		if len(args) == 0 {
			return nil
		}
		return toggle.Validate(args)
	})
}

// Pressed reports whether a Trigger message should fire: a bare message or
// a true value does, a release (false or 0) does not.
func Pressed(args Arguments) bool {
	if len(args) == 0 {
		return true
	}
	b, err := args.Bool(0)
	return err == nil && b
}

// String accepts a single string argument. When allowed is non-empty the
// value must match one of them, ignoring case.
func String(allowed ...string) Validator {
	return ValidatorFunc(func(args Arguments) error {
		if err := exactlyOne(args); err != nil {
			return err
		}
		s, err := args.String(0)
		if err != nil {
			return err
		}
		if len(allowed) == 0 {
			return nil
		}
		for _, a := range allowed {
			if strings.EqualFold(s, a) {
				return nil
			}
		}
		return fmt.Errorf("%w: %q (allowed: %s)", ErrNotAllowed, s, strings.Join(allowed, ", "))
	})
}

// Blob accepts a single blob argument of at most maxLen bytes.
// maxLen <= 0 means unbounded.
func Blob(maxLen int) Validator {
	return ValidatorFunc(func(args Arguments) error {
		if err := exactlyOne(args); err != nil {
			return err
		}
		b, err := args.Blob(0)
		if err != nil {
			return err
		}
		if maxLen > 0 && len(b) > maxLen {
			return fmt.Errorf("%w: blob of %d bytes exceeds %d", ErrOutOfRange, len(b), maxLen)
		}
		return nil
	})
}

// All accepts a message only when every validator accepts it.
// Validators run in order and the first rejection is returned.
func All(validators ...Validator) Validator {
	return ValidatorFunc(func(args Arguments) error {
		for _, v := range validators {
			if err := v.Validate(args); err != nil {
				return err
			}
		}
		return nil
	})
}

// Any accepts a message when at least one validator accepts it.
// If all reject, the last rejection is returned.
func Any(validators ...Validator) Validator {
	return ValidatorFunc(func(args Arguments) error {
		err := fmt.Errorf("%w: no alternatives", ErrArity)
		for _, v := range validators {
			if err = v.Validate(args); err == nil {
				return nil
			}
		}
		return err
	})
}

func exactlyOne(args Arguments) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: got %d, want 1", ErrArity, len(args))
	}
	return nil
}
