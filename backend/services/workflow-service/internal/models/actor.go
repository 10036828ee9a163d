package models

// Role of a signed-in actor.
type Role string

const (
	RoleMember  Role = "member"
	RoleEVOwner Role = "ev-owner"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleEVOwner, RoleAdmin:
		return true
	}
	return false
}

// Actor is the signed-in identity of a session.
type Actor struct {
	ID              string   `json:"id"`
	Email           string   `json:"email"`
	Name            string   `json:"name"`
	Role            Role     `json:"role"`
	SolarCapacityKW *float64 `json:"solar_capacity_kw,omitempty"`
	Address         string   `json:"address,omitempty"`
}

// IsAdmin reports whether the actor holds the administrator role.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// User is a directory entry: an actor plus its credential hash.
type User struct {
	Actor
	PasswordHash string `json:"-"`
}
