// internal/acl/store_test.go
//
// Unit-tests for the acl query helpers using sqlmock.
//
// Run: go test ./internal/acl -v

package acl

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUserRoles(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT r.name FROM user_role ur JOIN role r ON r.id = ur.role_id WHERE ur.user_id = ? AND r.enabled = TRUE`,
	)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("editor").AddRow("secretary"))

	got, err := UserRoles(context.Background(), db, 42)
	if err != nil {
		t.Fatalf("UserRoles error: %v", err)
	}
	if len(got) != 2 || got[0] != "editor" || got[1] != "secretary" {
		t.Fatalf("unexpected result: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestElevated_AnonymousShortCircuits(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	ok, err := Elevated(context.Background(), db, 0)
	if err != nil {
		t.Fatalf("Elevated error: %v", err)
	}
	if ok {
		t.Fatal("anonymous viewer reported elevated")
	}
	// No query must reach the database.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected SQL activity: %v", err)
	}
}

func TestElevated_Hit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM user_role ur`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	ok, err := Elevated(context.Background(), db, 42)
	if err != nil {
		t.Fatalf("Elevated error: %v", err)
	}
	if !ok {
		t.Fatal("expected elevated = true")
	}
}

func TestElevated_NoRoles(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM user_role ur`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	ok, err := Elevated(context.Background(), db, 7)
	if err != nil {
		t.Fatalf("Elevated error: %v", err)
	}
	if ok {
		t.Fatal("expected elevated = false")
	}
}
