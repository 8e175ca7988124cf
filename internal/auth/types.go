package auth

import (
	"errors"
	"fmt"
)

// Role represents an authorisation tier for API callers.
type Role string

const (
	// RoleViewer can read diagnostics but cannot change switcher state.
	RoleViewer Role = "viewer"

	// RoleOperator can additionally inject OSC messages, which reach the
	// live switcher exactly as if a control surface had sent them.
	RoleOperator Role = "operator"
)

// ValidRoles is the set of roles a token may carry.
var ValidRoles = []Role{RoleViewer, RoleOperator}

// IsValidRole returns true if r is a known role.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// ParseRole converts s to a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !IsValidRole(r) {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Sentinel errors for auth operations.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrUnknownRole  = errors.New("unknown role")
	ErrForbidden    = errors.New("insufficient permissions")
	ErrNoSecret     = errors.New("signing secret is empty")
)
