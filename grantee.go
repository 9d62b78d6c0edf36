package drivetree

// Grantee represents an entity that can be granted access to a node.
// This is a sealed interface - use the constructor functions User, Group, Domain, or Anyone.
type Grantee interface {
	// Identifier returns the email address or domain naming the grantee, or "anyone".
	Identifier() string
	doNotImplement(Grantee)
}

// User creates a Grantee representing a specific user identified by email address.
func User(email string) Grantee {
	return GranteeUser{Email: email}
}

// Group creates a Grantee representing a group identified by email address.
func Group(email string) Grantee {
	return GranteeGroup{Email: email}
}

// Domain creates a Grantee representing all users in a domain.
func Domain(domain string) Grantee {
	return GranteeDomain{Domain: domain}
}

// Anyone creates a Grantee representing everyone holding the link.
func Anyone() Grantee {
	return GranteeAnyone{}
}

// GranteeUser represents a specific user identified by email address.
type GranteeUser struct {
	Email string
}

func (g GranteeUser) Identifier() string { return g.Email }

func (GranteeUser) doNotImplement(Grantee) {}

// GranteeGroup represents a group identified by email address.
type GranteeGroup struct {
	Email string
}

func (g GranteeGroup) Identifier() string { return g.Email }

func (GranteeGroup) doNotImplement(Grantee) {}

// GranteeDomain represents all users in a domain.
type GranteeDomain struct {
	Domain string
}

func (g GranteeDomain) Identifier() string { return g.Domain }

func (GranteeDomain) doNotImplement(Grantee) {}

// GranteeAnyone represents link-wide access.
type GranteeAnyone struct{}

func (GranteeAnyone) Identifier() string { return "anyone" }

func (GranteeAnyone) doNotImplement(Grantee) {}
