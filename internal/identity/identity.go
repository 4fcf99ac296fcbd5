// Package identity carries the resolved caller identity handed to the
// service layer by the authentication boundary. The persistence core never
// validates identity; it only consumes ids and roles already resolved
// upstream.
package identity

// RoleAdmin grants unscoped access to every entity.
const RoleAdmin = "admin"

// Identity is a resolved (user id, role set) pair.
type Identity struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the identity carries the given role.
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool { return i.HasRole(RoleAdmin) }
