package auth

// Role is the closed set of authorization levels an identity can hold
type Role = string

const (
	// RoleUser is the default role (read access to shared resources)
	RoleUser Role = "USER"
	// RoleAdmin can additionally create and update shared resources
	RoleAdmin Role = "ADMIN"
)

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a Role
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, IsValidRole(role)
}

// AllRoles returns all predefined roles
func AllRoles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

// RoleIn reports whether role is a member of the given set. An empty set
// matches nothing; callers wanting "no role required" should not call this.
func RoleIn(role Role, set []Role) bool {
	for _, candidate := range set {
		if candidate == role {
			return true
		}
	}
	return false
}
