package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"atrios.org/internal/ats"
)

// Store implements ats.Store over PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ ats.Store = (*Store)(nil)

// Open connects to PostgreSQL with pool defaults tuned for a small staff app.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// New wraps an existing handle (tests, shared pools).
func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Clients(context.Context) ats.ClientStore           { return &clientStore{db: s.db} }
func (s *Store) Jobs(context.Context) ats.JobStore                 { return &jobStore{db: s.db} }
func (s *Store) Candidates(context.Context) ats.CandidateStore     { return &candidateStore{db: s.db} }
func (s *Store) Applications(context.Context) ats.ApplicationStore { return &applicationStore{db: s.db} }

// --- helpers ---

func uniqueViolation(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr
	}
	return nil
}

func notFoundOn(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ats.ErrNotFound
	}
	return err
}
