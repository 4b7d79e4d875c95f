// Package authz centralizes every access decision in the server.
//
// Request handlers never compare roles themselves: they ask the
// Engine for a verdict against the static policy table, and use
// ScopeFilter to constrain listing queries to the rows the caller may
// see. Policy changes happen in one place and are testable without
// any HTTP or storage machinery.
package authz

import "github.com/gatherly/server/internal/auth"

// Identity is the resolved caller: a (user id, role) pair, or the
// zero value for an anonymous request. Credential resolution fails
// closed, so a bad or expired token always yields Anonymous().
type Identity struct {
	UserID string
	Role   auth.Role
}

func Anonymous() Identity {
	return Identity{}
}

func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

// Recognized reports whether the identity carries one of the three
// closed role values. An authenticated user with an unrecognized role
// is treated as anonymous for access purposes.
func (i Identity) Recognized() bool {
	return !i.IsAnonymous() && i.Role != auth.RoleUnknown &&
		auth.NormalizeRole(string(i.Role)) == i.Role
}
