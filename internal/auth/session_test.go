package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

// memStore is an in-memory Store for session service tests.
type memStore struct {
	users    map[string]*User
	sessions map[string]*Session
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*User{}, sessions: map[string]*Session{}}
}

func (m *memStore) Users(context.Context) UserStore       { return (*memUsers)(m) }
func (m *memStore) Sessions(context.Context) SessionStore { return (*memSessions)(m) }

type memUsers memStore

func (m *memUsers) Create(_ context.Context, u *User) error {
	m.users[u.ID] = u
	return nil
}

func (m *memUsers) Find(_ context.Context, id string) (*User, error) {
	if u, ok := m.users[id]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, ErrNotFound
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memUsers) List(context.Context) ([]*User, error) {
	var out []*User
	for _, u := range m.users {
		copy := *u
		out = append(out, &copy)
	}
	return out, nil
}

func (m *memUsers) Update(_ context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	copy := *u
	m.users[u.ID] = &copy
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, userID, hash string) error {
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type memSessions memStore

func (m *memSessions) Create(_ context.Context, s *Session) error {
	copy := *s
	m.sessions[s.ID] = &copy
	return nil
}

func (m *memSessions) Find(_ context.Context, id string) (*Session, error) {
	if s, ok := m.sessions[id]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, ErrNotFound
}

func (m *memSessions) MarkRevoked(_ context.Context, id string) error {
	if s, ok := m.sessions[id]; ok {
		s.Revoked = true
	}
	return nil
}

func (m *memSessions) MarkRevokedByUser(_ context.Context, userID string) error {
	for _, s := range m.sessions {
		if s.UserID == userID {
			s.Revoked = true
		}
	}
	return nil
}

func seedUser(t *testing.T, store *memStore, status string) *User {
	t.Helper()
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatal(err)
	}
	u := &User{
		ID:           "user-1",
		Name:         "Rhea Kapoor",
		Email:        "rhea@atrios.example",
		PasswordHash: hash,
		Role:         RoleRecruiter,
		Status:       status,
	}
	store.users[u.ID] = u
	return u
}

func TestLoginAndAuthenticate(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, UserStatusActive)

	svc, err := NewService(store, "test-secret")
	if err != nil {
		t.Fatal(err)
	}

	token, principal, err := svc.Login(context.Background(), "RHEA@atrios.example", "hunter2hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if principal.User.Role != RoleRecruiter {
		t.Fatalf("unexpected role %q", principal.User.Role)
	}

	got, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.User.ID != "user-1" {
		t.Fatalf("unexpected principal %q", got.User.ID)
	}
}

func TestLoginRejectsBadCredentialsAndInactive(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, UserStatusActive)
	svc, _ := NewService(store, "test-secret")

	if _, _, err := svc.Login(context.Background(), "rhea@atrios.example", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@atrios.example", "hunter2hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	store.users["user-1"].Status = UserStatusInactive
	if _, _, err := svc.Login(context.Background(), "rhea@atrios.example", "hunter2hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for inactive user, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, UserStatusActive)
	svc, _ := NewService(store, "test-secret")

	token, _, err := svc.Login(context.Background(), "rhea@atrios.example", "hunter2hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession after logout, got %v", err)
	}
}

func TestAuthenticateRejectsExpiredSession(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, UserStatusActive)

	current := time.Now()
	svc, _ := NewService(store, "test-secret",
		WithSessionTTL(time.Minute),
		WithClock(func() time.Time { return current }),
	)

	token, _, err := svc.Login(context.Background(), "rhea@atrios.example", "hunter2hunter2")
	if err != nil {
		t.Fatal(err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for expired session, got %v", err)
	}
}

func TestAuthenticateRejectsTamperedToken(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, UserStatusActive)
	svc, _ := NewService(store, "test-secret")

	token, _, err := svc.Login(context.Background(), "rhea@atrios.example", "hunter2hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(context.Background(), token+"x"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for tampered token, got %v", err)
	}
}
