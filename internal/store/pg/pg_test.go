package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"atrios.org/internal/ats"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestSubmitRollsBackOnDuplicatePair(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("insert into candidates").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("insert into applications").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "applications_job_id_candidate_id_key"})
	mock.ExpectRollback()

	cand := &ats.Candidate{FirstName: "Asha", Email: "asha@example.com", Phone: "9876543210"}
	app := &ats.Application{JobID: "job-1", Status: ats.StatusNew, Answer1: "a1", Answer2: "a2"}
	err := store.Applications(ctx).Submit(ctx, cand, true, app)
	if !errors.Is(err, ats.ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("candidate insert must not survive a duplicate application: %v", err)
	}
}

func TestSubmitCommitsCandidateAndApplicationTogether(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("insert into candidates").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("insert into applications").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cand := &ats.Candidate{FirstName: "Asha", Email: "asha@example.com", Phone: "9876543210"}
	app := &ats.Application{JobID: "job-1", Status: ats.StatusNew, Answer1: "a1", Answer2: "a2"}
	if err := store.Applications(ctx).Submit(ctx, cand, true, app); err != nil {
		t.Fatal(err)
	}
	if cand.ID == "" || app.ID == "" {
		t.Fatalf("ids must be minted during submit")
	}
	if app.CandidateID != cand.ID {
		t.Fatalf("application must reference the upserted candidate")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAcceptRollsBackWhenApplicationUpdateFails(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("update candidates").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("update applications").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	app := &ats.Application{ID: "app-1", Status: ats.StatusShortlisted, RecruiterID: "rec-1"}
	cand := &ats.Candidate{ID: "cand-1", FirstName: "Asha"}
	err := store.Applications(ctx).Accept(ctx, app, cand)
	if !errors.Is(err, ats.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a vanished application, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("candidate enrichment must roll back with the status move: %v", err)
	}
}

func TestJobListScopesRecruiters(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	cols := []string{"id", "client_id", "title", "description", "locations", "job_type",
		"experience_min", "experience_max", "salary_min", "salary_max",
		"screening_q1", "screening_q2", "apply_token", "status", "created_at", "updated_at"}
	now := time.Now()
	mock.ExpectQuery(`job_team t where t.job_id=j.id and t.user_id=\$1\) or c.assigned_to=\$1`).
		WithArgs("rec-1", 25, 0).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("job-1", "cl-1", "Backend Engineer", "", []byte(`["Remote"]`), "full-time",
				2, 5, 0, 0, "q1", "q2", "tok-1", "active", now, now))
	mock.ExpectQuery("select user_id from job_team").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("rec-1"))

	scope := ats.Scope{UserID: "rec-1"}
	jobs, err := store.Jobs(ctx).List(ctx, ats.JobFilter{}, scope, ats.Page{}.Normalize())
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].ID != "job-1" {
		t.Fatalf("jobs = %+v", jobs)
	}
	if len(jobs[0].Locations) != 1 || jobs[0].Locations[0] != "Remote" {
		t.Fatalf("locations must unmarshal from jsonb, got %v", jobs[0].Locations)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAdminJobListIsUnscoped(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	cols := []string{"id", "client_id", "title", "description", "locations", "job_type",
		"experience_min", "experience_max", "salary_min", "salary_max",
		"screening_q1", "screening_q2", "apply_token", "status", "created_at", "updated_at"}
	mock.ExpectQuery("select (.+) from jobs j join clients c").
		WithArgs(25, 0).
		WillReturnRows(sqlmock.NewRows(cols))

	if _, err := store.Jobs(ctx).List(ctx, ats.JobFilter{}, ats.Scope{All: true}, ats.Page{}.Normalize()); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFindDuplicateIgnoresEmptyValues(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectQuery(`\(\$1<>'' and cd.email=\$1\) or \(\$2<>'' and cd.phone=\$2\)`).
		WithArgs("", "9876543210", "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.Candidates(ctx).FindDuplicate(ctx, "", "9876543210", "")
	if !errors.Is(err, ats.ErrNotFound) {
		t.Fatalf("no match must yield ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCandidateCreateMapsUniqueViolation(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectExec("insert into candidates").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "candidates_phone_key"})
	mock.ExpectQuery(`select id from candidates where phone=\$1 and id<>\$2`).
		WithArgs("9876543210", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cand-7"))

	err := store.Candidates(ctx).Create(ctx, &ats.Candidate{FirstName: "Asha", Phone: "9876543210"})
	var dup *ats.DuplicateError
	if !errors.As(err, &dup) || dup.Field != "phone" {
		t.Fatalf("expected phone DuplicateError, got %v", err)
	}
	if dup.ExistingID != "cand-7" {
		t.Fatalf("duplicate must reference the colliding row, got %q", dup.ExistingID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCandidateCreateDuplicateSurvivesVanishedRow(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectExec("insert into candidates").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "candidates_email_key"})
	mock.ExpectQuery(`select id from candidates where email=\$1 and id<>\$2`).
		WithArgs("asha@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := store.Candidates(ctx).Create(ctx, &ats.Candidate{FirstName: "Asha", Email: "asha@example.com"})
	var dup *ats.DuplicateError
	if !errors.As(err, &dup) || dup.Field != "email" {
		t.Fatalf("expected email DuplicateError, got %v", err)
	}
	if dup.ExistingID != "" {
		t.Fatalf("a vanished collider leaves no reference, got %q", dup.ExistingID)
	}
}

func TestClientDeactivationCountsOpenJobs(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectQuery(`status in \('draft','active'\)`).
		WithArgs("cl-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := store.Clients(ctx).CountOpenJobs(ctx, "cl-1")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("open jobs = %d, want 2", n)
	}
}
