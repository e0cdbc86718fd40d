package models

import (
	"fmt"
	"strings"
	"time"
)

// UserRole separates administrators from representatives
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleIC    UserRole = "ic"
)

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleIC
}

// ParseUserRole is case-insensitive; an empty string yields the zero role
func ParseUserRole(raw string) (UserRole, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", nil
	}
	r := UserRole(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown user role %q", raw)
	}
	return r, nil
}

// User column names
var UserColumns = []string{"user_id", "username", "password_hash", "full_name", "role", "hub_name", "created_at"}

// User is an account allowed into the tracker
type User struct {
	UserID       string     `json:"user_id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	FullName     *string    `json:"full_name,omitempty"`
	Role         UserRole   `json:"role"`
	HubName      *string    `json:"hub_name,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// Actor is the authenticated user a flow acts on behalf of
type Actor struct {
	UserID   string
	Username string
	Role     UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == UserRoleAdmin
}
