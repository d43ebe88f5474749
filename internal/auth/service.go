package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserUpdate carries optional field changes; nil means leave as-is.
type UserUpdate struct {
	Name   *string
	Email  *string
	Role   *Role
	Status *string
}

// Users manages staff accounts. Creation is admin-only; the HTTP layer
// enforces that, this service only validates the data.
type Users struct {
	store UserStore
}

// NewUsers constructs the user management service.
func NewUsers(store UserStore) *Users {
	return &Users{store: store}
}

// Create registers a new staff account.
func (s *Users) Create(ctx context.Context, name, email, password string, role Role, strictPasswords bool) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if _, ok := ParseRole(string(role)); !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	if err := CheckPasswordPolicy(password, strictPasswords); err != nil {
		return nil, err
	}
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email %s", ErrAlreadyExists, email)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       UserStatusActive,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Update applies partial changes to a staff account.
func (s *Users) Update(ctx context.Context, id string, upd UserUpdate) (*User, error) {
	u, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		u.Name = name
	}
	if upd.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*upd.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
		}
		if existing, err := s.store.FindByEmail(ctx, email); err == nil && existing.ID != u.ID {
			return nil, fmt.Errorf("%w: email %s", ErrAlreadyExists, email)
		} else if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		u.Email = email
	}
	if upd.Role != nil {
		role, ok := ParseRole(string(*upd.Role))
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *upd.Role)
		}
		u.Role = role
	}
	if upd.Status != nil {
		status := strings.TrimSpace(strings.ToLower(*upd.Status))
		if status != UserStatusActive && status != UserStatusInactive {
			return nil, fmt.Errorf("%w: unsupported status %q", ErrInvalidInput, status)
		}
		u.Status = status
	}
	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword lets a user rotate their own password.
func (s *Users) ChangePassword(ctx context.Context, id, current, next string, strictPasswords bool) error {
	u, err := s.store.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := VerifyPassword(u.PasswordHash, current); err != nil {
		return ErrInvalidCredentials
	}
	if err := CheckPasswordPolicy(next, strictPasswords); err != nil {
		return err
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, id, hash)
}

// Find loads one account.
func (s *Users) Find(ctx context.Context, id string) (*User, error) {
	return s.store.Find(ctx, id)
}

// List returns all staff accounts, active and inactive.
func (s *Users) List(ctx context.Context) ([]*User, error) {
	return s.store.List(ctx)
}
