// internal/routing/table_test.go
//
// Unit-tests for the current-record route table and its middleware.
//
// Context
// -------
// The middleware rebuilds the rules lazily when the table is stale, then
// rewrites canonical listing paths in place.  These tests verify:
//
//   • Rule hit rewrites r.URL.Path                 → handler sees the target
//   • Miss falls through untouched                 → handler sees the original
//   • Invalidate triggers exactly one rebuild      → builder call count
//   • Rebuild failure keeps the previous rules     → stale rules still serve
//
// Run: go test ./internal/routing -v

package routing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func staticBuilder(rules map[string]string) Builder {
	return func(context.Context) (map[string]string, error) {
		return rules, nil
	}
}

func fire(t *testing.T, mw func(http.Handler) http.Handler, path string) string {
	t.Helper()

	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	return got
}

func TestMiddleware_RewritesRuleHit(t *testing.T) {
	table := NewTable()
	mw := Middleware(table, staticBuilder(map[string]string{
		"/board": "/board/2024-2025",
	}))

	if got := fire(t, mw, "/board"); got != "/board/2024-2025" {
		t.Fatalf("rewrite failed: got path %q", got)
	}
}

func TestMiddleware_MissFallsThrough(t *testing.T) {
	table := NewTable()
	mw := Middleware(table, staticBuilder(map[string]string{
		"/board": "/board/2024-2025",
	}))

	if got := fire(t, mw, "/house/billitonia"); got != "/house/billitonia" {
		t.Fatalf("path mutated on a miss: %q", got)
	}
}

func TestMiddleware_RebuildsOnlyWhenStale(t *testing.T) {
	table := NewTable()

	builds := 0
	builder := func(context.Context) (map[string]string, error) {
		builds++
		return map[string]string{}, nil
	}
	mw := Middleware(table, builder)

	fire(t, mw, "/a") // fresh table is stale, builds once
	fire(t, mw, "/b") // no rebuild
	if builds != 1 {
		t.Fatalf("builds = %d, want 1", builds)
	}

	table.Invalidate()
	fire(t, mw, "/c")
	if builds != 2 {
		t.Fatalf("builds after invalidate = %d, want 2", builds)
	}
}

func TestRebuild_FailureKeepsOldRules(t *testing.T) {
	table := NewTable()
	good := staticBuilder(map[string]string{"/board": "/board/old"})

	if err := table.Rebuild(context.Background(), good); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	table.Invalidate()
	bad := func(context.Context) (map[string]string, error) {
		return nil, errors.New("db down")
	}
	if err := table.Rebuild(context.Background(), bad); err == nil {
		t.Fatal("expected rebuild error")
	}

	if target, ok := table.lookup("/board"); !ok || target != "/board/old" {
		t.Fatalf("old rules lost: (%q, %v)", target, ok)
	}
	if !table.stale() {
		t.Fatal("table should stay stale after a failed rebuild")
	}
}
