package authz

import "github.com/gatherly/server/internal/auth"

// Intent distinguishes public listings from dashboard ("mine") ones.
type Intent string

const (
	IntentListPublic Intent = "list_public"
	IntentListMine   Intent = "list_mine"
)

// Filter constrains a listing query. The zero value means no
// constraint (all rows).
type Filter struct {
	OwnerID string
}

// ScopeFilter is a pure function from (identity, resource, intent) to
// the row subset the caller may see. Public listings are never scoped,
// regardless of identity. For "mine" listings, EVENT_OWNER sees only
// rows it owns; ADMIN and STAFF see everything.
func ScopeFilter(identity Identity, resource Resource, intent Intent) Filter {
	if intent != IntentListMine {
		return Filter{}
	}
	if identity.Role == auth.RoleEventOwner {
		return Filter{OwnerID: identity.UserID}
	}
	return Filter{}
}
