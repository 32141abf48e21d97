package entities

// Role is immutable reference data assigned to groups. Roles are seeded at
// deployment time and are not a mutable aggregate with events.
type Role struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Well-known role codes
const (
	RoleAdmin     = "ADMIN"
	RoleUserAdmin = "USER_ADMIN"
	RoleMember    = "MEMBER"
)
