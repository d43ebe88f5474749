package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestUserStoreFindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "status", "created_at", "updated_at"}).
		AddRow("u1", "Rhea Kapoor", "rhea@atrios.example", "hash", "recruiter", "active", now, now)
	mock.ExpectQuery("select .* from users where email").WithArgs("rhea@atrios.example").WillReturnRows(rows)

	store := NewPGStore(db)
	u, err := store.Users(context.Background()).FindByEmail(context.Background(), "rhea@atrios.example")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if u.Role != RoleRecruiter || u.Status != UserStatusActive {
		t.Fatalf("unexpected user %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserStoreCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("insert into users").
		WithArgs(sqlmock.AnyArg(), "Rhea Kapoor", "rhea@atrios.example", "hash", "recruiter", "active").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	store := NewPGStore(db)
	err = store.Users(context.Background()).Create(context.Background(), &User{
		Name:         "Rhea Kapoor",
		Email:        "rhea@atrios.example",
		PasswordHash: "hash",
		Role:         RoleRecruiter,
		Status:       UserStatusActive,
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expires := time.Now().Add(time.Hour)
	mock.ExpectExec("insert into sessions").
		WithArgs("s1", "u1", "tokenhash", expires).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("select id, user_id, token_hash, expires_at, created_at, revoked from sessions").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "created_at", "revoked"}).
			AddRow("s1", "u1", "tokenhash", expires, time.Now(), false))
	mock.ExpectExec("update sessions set revoked=true where id").
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPGStore(db)
	sessions := store.Sessions(context.Background())
	ctx := context.Background()

	if err := sessions.Create(ctx, &Session{ID: "s1", UserID: "u1", TokenHash: "tokenhash", ExpiresAt: expires}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	sess, err := sessions.Find(ctx, "s1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if sess.Revoked {
		t.Fatalf("fresh session should not be revoked")
	}
	if err := sessions.MarkRevoked(ctx, "s1"); err != nil {
		t.Fatalf("MarkRevoked: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
