// internal/settings/store_test.go
//
// Unit-tests for the write-through settings store using sqlmock.
//
// Run: go test ./internal/settings -v

package settings

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(sqlx.NewDb(db, "sqlmock")), mock
}

func TestLoadAndGet(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `key`, value FROM setting")).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
			AddRow("board.current", "42").
			AddRow("house.parent", "7").
			AddRow("chapter.parent", "not-a-number"))

	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if v, ok := store.Get("board.current"); !ok || v != "42" {
		t.Errorf("Get = (%q, %v), want (42, true)", v, ok)
	}
	if n, ok := store.GetUint("house.parent"); !ok || n != 7 {
		t.Errorf("GetUint = (%d, %v), want (7, true)", n, ok)
	}
	if _, ok := store.GetUint("chapter.parent"); ok {
		t.Error("GetUint accepted a non-numeric value")
	}
	if _, ok := store.Get("missing"); ok {
		t.Error("Get found an unset key")
	}
}

func TestSet_WriteThrough(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO setting (`key`, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)",
	)).
		WithArgs("board.current", "9").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Set(context.Background(), "board.current", "9"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// Read-after-write comes from memory, no second query expected.
	if n, ok := store.GetUint("board.current"); !ok || n != 9 {
		t.Fatalf("GetUint = (%d, %v), want (9, true)", n, ok)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestDelete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO setting (`key`, value) VALUES (?, ?)",
	)).
		WithArgs("board.current", "9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM setting WHERE `key` = ?")).
		WithArgs("board.current").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	if err := store.Set(ctx, "board.current", "9"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := store.Delete(ctx, "board.current"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, ok := store.Get("board.current"); ok {
		t.Fatal("deleted key still readable")
	}
}
