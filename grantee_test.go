package drivetree_test

import (
	"reflect"
	"testing"

	"github.com/Jumpaku/go-drivetree"
)

func TestGrantee_ConstructorsReturnExpectedConcreteTypes(t *testing.T) {
	cases := []struct {
		name           string
		got            drivetree.Grantee
		want           drivetree.Grantee
		wantIdentifier string
	}{
		{"User", drivetree.User("alice@example.com"), drivetree.GranteeUser{Email: "alice@example.com"}, "alice@example.com"},
		{"Group", drivetree.Group("team@example.com"), drivetree.GranteeGroup{Email: "team@example.com"}, "team@example.com"},
		{"Domain", drivetree.Domain("example.com"), drivetree.GranteeDomain{Domain: "example.com"}, "example.com"},
		{"Anyone", drivetree.Anyone(), drivetree.GranteeAnyone{}, "anyone"},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			if !reflect.DeepEqual(c.got, c.want) {
				t.Fatalf("mismatch for %s: got (%T) %#v, want (%T) %#v", c.name, c.got, c.got, c.want, c.want)
			}
			if got := c.got.Identifier(); got != c.wantIdentifier {
				t.Fatalf("Identifier() = %q, want %q", got, c.wantIdentifier)
			}
		})
	}
}
