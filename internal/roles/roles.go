// Package roles defines the closed set of privilege roles known to the
// system. Roles are compile-time constants; every role literal arriving from
// outside the system must pass Parse before it is used anywhere else.
package roles

import "errors"

// Role is a named privilege grant from the closed enumeration.
type Role string

const (
	// RoleWriter may own content posts.
	RoleWriter Role = "writer"
	// RoleEditor may be requested through the role-request workflow.
	RoleEditor Role = "editor"
	// RoleModerator may be requested through the role-request workflow.
	RoleModerator Role = "moderator"
	// RoleAdmin may read other users' role requests and approve them.
	RoleAdmin Role = "admin"
	// RoleSuperuser is the highest privilege: user mutation, full role-request
	// listing and request approval.
	RoleSuperuser Role = "superuser"
)

// ErrInvalidRole is returned when a literal is not part of the closed role set.
var ErrInvalidRole = errors.New("invalid role")

// All returns the fixed membership set of valid roles.
func All() []Role {
	return []Role{RoleWriter, RoleEditor, RoleModerator, RoleAdmin, RoleSuperuser}
}

// Parse validates a role literal. Literals are case-sensitive lowercase
// strings; anything outside the closed set fails with ErrInvalidRole.
func Parse(literal string) (Role, error) {
	switch Role(literal) {
	case RoleWriter, RoleEditor, RoleModerator, RoleAdmin, RoleSuperuser:
		return Role(literal), nil
	}

	return "", ErrInvalidRole
}

// List is a duplicate-free collection of roles held by one user.
// Insertion order is preserved but carries no meaning.
type List []Role

// Has reports whether the list contains the given role.
func (l List) Has(role Role) bool {
	for _, r := range l {
		if r == role {
			return true
		}
	}

	return false
}

// HasAny reports whether the list contains at least one of the given roles.
func (l List) HasAny(candidates ...Role) bool {
	for _, c := range candidates {
		if l.Has(c) {
			return true
		}
	}

	return false
}

// Add returns the list with the role appended, or the list unchanged if the
// role is already present.
func (l List) Add(role Role) List {
	if l.Has(role) {
		return l
	}

	return append(l, role)
}

// Remove returns the list without the given role. Removing an absent role is
// a no-op.
func (l List) Remove(role Role) List {
	for i, r := range l {
		if r == role {
			return append(l[:i:i], l[i+1:]...)
		}
	}

	return l
}

// Strings returns the list as plain string literals for API responses.
func (l List) Strings() []string {
	out := make([]string, 0, len(l))
	for _, r := range l {
		out = append(out, string(r))
	}

	return out
}
