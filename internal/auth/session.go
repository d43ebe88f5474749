package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"atrios.org/internal/ids"
)

const defaultSessionTTL = 12 * time.Hour

// Service authenticates staff and manages their sessions. Cookies carry a
// signed HS256 token; the matching session row allows server-side revocation.
type Service struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithSessionTTL overrides the session lifetime.
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the session service.
func NewService(store Store, secret string, opts ...ServiceOption) (*Service, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: session secret is required")
	}
	svc := &Service{
		store:  store,
		secret: []byte(secret),
		ttl:    defaultSessionTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Login verifies credentials and mints a session token for the cookie.
func (s *Service) Login(ctx context.Context, email, password string) (string, Principal, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", Principal{}, ErrInvalidCredentials
	}
	user, err := s.store.Users(ctx).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", Principal{}, ErrInvalidCredentials
		}
		return "", Principal{}, err
	}
	if !user.Active() {
		return "", Principal{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return "", Principal{}, ErrInvalidCredentials
	}

	now := s.now()
	sess := &Session{
		ID:        ids.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
	}
	token, err := s.signToken(sess, now)
	if err != nil {
		return "", Principal{}, err
	}
	sess.TokenHash = hashToken(token)
	if err := s.store.Sessions(ctx).Create(ctx, sess); err != nil {
		return "", Principal{}, err
	}
	return token, Principal{User: *user}, nil
}

// Authenticate resolves the principal behind a session cookie value.
func (s *Service) Authenticate(ctx context.Context, token string) (Principal, error) {
	sessionID, err := s.verifyToken(token)
	if err != nil {
		return Principal{}, ErrInvalidSession
	}
	sess, err := s.store.Sessions(ctx).Find(ctx, sessionID)
	if err != nil {
		return Principal{}, ErrInvalidSession
	}
	if sess.Revoked || s.now().After(sess.ExpiresAt) {
		return Principal{}, ErrInvalidSession
	}
	if sess.TokenHash != hashToken(token) {
		_ = s.store.Sessions(ctx).MarkRevoked(ctx, sess.ID)
		return Principal{}, ErrInvalidSession
	}
	user, err := s.store.Users(ctx).Find(ctx, sess.UserID)
	if err != nil {
		return Principal{}, ErrInvalidSession
	}
	if !user.Active() {
		return Principal{}, ErrInvalidSession
	}
	return Principal{User: *user}, nil
}

// Logout revokes the session behind the cookie. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	sessionID, err := s.verifyToken(token)
	if err != nil {
		return nil
	}
	return s.store.Sessions(ctx).MarkRevoked(ctx, sessionID)
}

// RevokeAll revokes every session of a user (password change, deactivation).
func (s *Service) RevokeAll(ctx context.Context, userID string) error {
	return s.store.Sessions(ctx).MarkRevokedByUser(ctx, userID)
}

func (s *Service) signToken(sess *Session, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   sess.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		Issuer:    "atrios-ats",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) verifyToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidSession
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer("atrios-ats"))
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.ID == "" {
		return "", ErrInvalidSession
	}
	return claims.ID, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
