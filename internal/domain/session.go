package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin is the single role check used everywhere admin access is derived.
// Anything other than an exact match fails closed.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Session is the ephemeral authentication state: created on login,
// destroyed on logout or whenever the persisted record is absent/unparsable.
type Session struct {
	Token string
	User  User
}

func (s Session) Valid() bool { return s.Token != "" }
