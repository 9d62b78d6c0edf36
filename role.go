package drivetree

import (
	"fmt"
)

// Role is the access level carried by a Grant.
type Role string

const (
	RoleReader Role = "reader"
	RoleWriter Role = "writer"
	RoleOwner  Role = "owner"
)

// Roles lists the roles that can be granted.
var Roles = []Role{RoleReader, RoleWriter, RoleOwner}

// ParseRole converts s to a Role. An empty or unknown s yields ErrNoRoleSelected.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", fmt.Errorf("role must be one of %v: %w", Roles, ErrNoRoleSelected)
	}
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role '%s', must be one of %v: %w", s, Roles, ErrNoRoleSelected)
}
