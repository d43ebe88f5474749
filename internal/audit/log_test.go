package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRecordSwallowsInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec("insert into activity_logs").
		WillReturnError(errors.New("connection reset"))

	// Must not panic or propagate: callers never check activity-log errors.
	New(db).Record(context.Background(), "user-1", "candidate.blacklist", "candidate", "cand-1", "Blacklisted Asha Rao")

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListReturnsNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("from activity_logs order by created_at desc").
		WithArgs(50, 0).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "actor_id", "action", "entity_type", "entity_id", "description", "created_at"}).
			AddRow("e2", "user-1", "job.close", "job", "job-1", "Closed Backend Engineer", now).
			AddRow("e1", "user-1", "job.create", "job", "job-1", "Created Backend Engineer", now.Add(-time.Hour)))

	entries, err := New(db).List(context.Background(), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].ID != "e2" {
		t.Fatalf("entries = %+v", entries)
	}
}
