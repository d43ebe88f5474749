package settings

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestGetFallsBackToDefault(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery("select value from settings").
		WithArgs(KeySiteName).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	got, err := New(db).Get(context.Background(), KeySiteName)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Atrios ATS" {
		t.Fatalf("default site name = %q", got)
	}
}

func TestPageSizeClampsNonsense(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery("select value from settings").
		WithArgs(KeyPageSize).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("100000"))

	if got := New(db).PageSize(context.Background()); got != 25 {
		t.Fatalf("page size = %d, want clamp to 25", got)
	}
}

func TestStrictPasswords(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery("select value from settings").
		WithArgs(KeyPasswordPolicy).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("strict"))

	if !New(db).StrictPasswords(context.Background()) {
		t.Fatal("stored strict policy must be honoured")
	}
}
