// Package settings holds site-wide tunables in a key-value table so admins
// can change them without a deploy.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
)

// Known keys and their defaults. Unknown keys read back empty.
const (
	KeyPasswordPolicy = "password_policy"
	KeyPageSize       = "page_size"
	KeySiteName       = "site_name"
)

var defaults = map[string]string{
	KeyPasswordPolicy: "standard",
	KeyPageSize:       "25",
	KeySiteName:       "Atrios ATS",
}

type Service struct {
	db *sql.DB
}

func New(db *sql.DB) *Service { return &Service{db: db} }

// Get returns the stored value, falling back to the compiled default.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `select value from settings where key=$1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return defaults[key], nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set upserts one key.
func (s *Service) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("settings: key is required")
	}
	_, err := s.db.ExecContext(ctx, `
		insert into settings(key, value) values ($1,$2)
		on conflict (key) do update set value=excluded.value, updated_at=now()
	`, key, value)
	return err
}

// All returns every known setting, stored values overriding defaults.
func (s *Service) All(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	rows, err := s.db.QueryContext(ctx, `select key, value from settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// PageSize resolves the listing page size, clamped to sane bounds.
func (s *Service) PageSize(ctx context.Context) int {
	raw, err := s.Get(ctx, KeyPageSize)
	if err != nil {
		return 25
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 5 || n > 200 {
		return 25
	}
	return n
}

// StrictPasswords reports whether the strict password policy is active.
func (s *Service) StrictPasswords(ctx context.Context) bool {
	v, err := s.Get(ctx, KeyPasswordPolicy)
	return err == nil && v == "strict"
}
