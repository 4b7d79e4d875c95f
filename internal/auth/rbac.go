package auth

import "strings"

// Role classifies an authenticated user. The set is closed: anything
// outside it normalizes to RoleUnknown, which no policy row accepts.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleEventOwner Role = "EVENT_OWNER"
	RoleStaff      Role = "STAFF"
	RoleUnknown    Role = ""
)

func NormalizeRole(role string) Role {
	switch strings.ToUpper(strings.TrimSpace(role)) {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleEventOwner):
		return RoleEventOwner
	case string(RoleStaff):
		return RoleStaff
	default:
		return RoleUnknown
	}
}

// IsValidRole reports whether role is one of the three recognized values.
func IsValidRole(role string) bool {
	return NormalizeRole(role) != RoleUnknown
}
