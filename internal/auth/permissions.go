package auth

// Permission represents a named capability in the API.
type Permission string

// Permission constants.
const (
	PermDiagnosticsRead Permission = "diagnostics:read"
	PermStreamSubscribe Permission = "stream:subscribe"
	PermOSCDispatch     Permission = "osc:dispatch"
)

// rolePermissions maps each role to its granted permissions.
var rolePermissions = map[Role][]Permission{
	RoleViewer: {
		PermDiagnosticsRead,
		PermStreamSubscribe,
	},
	RoleOperator: {
		PermDiagnosticsRead,
		PermStreamSubscribe,
		PermOSCDispatch,
	},
}

// HasPermission returns true if role has perm.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsForRole returns a copy of the permissions granted to role.
// Returns nil for unknown roles.
func PermissionsForRole(role Role) []Permission {
	perms := rolePermissions[role]
	if perms == nil {
		return nil
	}
	result := make([]Permission, len(perms))
	copy(result, perms)
	return result
}
