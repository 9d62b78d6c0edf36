package drivetree

import (
	"strings"
)

type PermissionID string

// Grant is one access permission attached to a node.
type Grant struct {
	ID                 PermissionID
	Grantee            Grantee
	Role               Role
	AllowFileDiscovery bool
	DisplayName        string
}

// IsLink reports whether the grant gives access to anyone holding the link.
func (g Grant) IsLink() bool {
	_, ok := g.Grantee.(GranteeAnyone)
	return ok
}

// Matches reports whether the grant was given to grantee.
// Email addresses and domains are compared case-insensitively.
func (g Grant) Matches(grantee Grantee) bool {
	switch want := grantee.(type) {
	case GranteeUser:
		got, ok := g.Grantee.(GranteeUser)
		return ok && strings.EqualFold(got.Email, want.Email)
	case GranteeGroup:
		got, ok := g.Grantee.(GranteeGroup)
		return ok && strings.EqualFold(got.Email, want.Email)
	case GranteeDomain:
		got, ok := g.Grantee.(GranteeDomain)
		return ok && strings.EqualFold(got.Domain, want.Domain)
	case GranteeAnyone:
		return g.IsLink()
	}
	return false
}

// MatchesIdentifier reports whether the grant was given to a user or group with the given email,
// or to the given domain.
func (g Grant) MatchesIdentifier(id string) bool {
	switch g.Grantee.(type) {
	case GranteeUser, GranteeGroup, GranteeDomain:
		return strings.EqualFold(g.Grantee.Identifier(), id)
	}
	return false
}
