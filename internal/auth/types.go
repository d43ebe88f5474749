package auth

import (
	"strings"
	"time"
)

// Role is the flat staff role. There is no hierarchy: every protected page
// enumerates its own allow-list.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleRecruiter Role = "recruiter"
)

// ParseRole normalises and validates a role string.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleManager:
		return RoleManager, true
	case RoleRecruiter:
		return RoleRecruiter, true
	}
	return "", false
}

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User is a staff account. Users are never hard-deleted; deactivation flips
// Status to inactive.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active reports whether the account may log in.
func (u User) Active() bool { return u.Status == UserStatusActive }

// Session is a revocable server-side record backing one signed cookie.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	Revoked   bool
}

// Principal is the resolved identity attached to a request context.
type Principal struct {
	User User
}

// HasAnyRole reports whether the principal's role is in the allow-list.
func (p Principal) HasAnyRole(allowed ...Role) bool {
	for _, r := range allowed {
		if p.User.Role == r {
			return true
		}
	}
	return false
}

// IsAdmin is shorthand for the admin-only pages.
func (p Principal) IsAdmin() bool { return p.User.Role == RoleAdmin }
