package auth

import "context"

// UserStore manages staff accounts.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// SessionStore manages the revocable session records behind signed cookies.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Find(ctx context.Context, id string) (*Session, error)
	MarkRevoked(ctx context.Context, id string) error
	MarkRevokedByUser(ctx context.Context, userID string) error
}

// Store bundles the persistence the auth subsystem needs.
type Store interface {
	Users(ctx context.Context) UserStore
	Sessions(ctx context.Context) SessionStore
}
