// internal/current/resolver_test.go
//
// Unit-tests for the latest-record resolver's transition rules.
//
// Context
// -------
// fakeSeries and fakePointer are in-memory stands-in for the record and
// settings stores, and fakeRoutes counts invalidations so the tests can
// assert that only real pointer transitions bump the route table.
//
// Run: go test ./internal/current -v

package current

import (
	"context"
	"strconv"
	"testing"

	"github.com/vgsr/entity/internal/record"
)

// fakeSeries satisfies SeriesStore over a fixed record set.
type fakeSeries struct {
	recs map[uint64]*record.Record
}

func (f *fakeSeries) ByID(_ context.Context, id uint64) (*record.Record, error) {
	return f.recs[id], nil
}

// TopOfSeries mirrors the SQL ordering: published only, highest ordering
// first, ties by lowest id.
func (f *fakeSeries) TopOfSeries(_ context.Context, typeName string) (*record.Record, error) {
	var top *record.Record
	for _, r := range f.recs {
		if r.Type != typeName || !r.Published() {
			continue
		}
		if top == nil || r.Ordering > top.Ordering ||
			(r.Ordering == top.Ordering && r.ID < top.ID) {
			top = r
		}
	}
	return top, nil
}

// fakePointer satisfies PointerStore with a plain map.
type fakePointer struct {
	data map[string]string
}

func (f *fakePointer) GetUint(key string) (uint64, bool) {
	v, ok := f.data[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (f *fakePointer) Set(_ context.Context, key, value string) error {
	f.data[key] = value
	return nil
}

func (f *fakePointer) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

// fakeRoutes counts Invalidate calls.
type fakeRoutes struct{ calls int }

func (f *fakeRoutes) Invalidate() { f.calls++ }

func rec(id uint64, ordering int, status record.Status) *record.Record {
	return &record.Record{ID: id, Type: "board", Ordering: ordering, Status: status}
}

func setup(recs ...*record.Record) (*Resolver, *fakeSeries, *fakeRoutes) {
	series := &fakeSeries{recs: map[uint64]*record.Record{}}
	for _, r := range recs {
		series.recs[r.ID] = r
	}
	routes := &fakeRoutes{}
	r := New("board", series, &fakePointer{data: map[string]string{}}, routes)
	return r, series, routes
}

func TestOnWrite_FirstPublishPoints(t *testing.T) {
	r2024 := rec(1, 2024, record.StatusPublished)
	res, _, routes := setup(r2024)
	ctx := context.Background()

	if _, ok := res.Current(ctx); ok {
		t.Fatal("fresh resolver should be empty")
	}

	if err := res.OnWrite(ctx, r2024); err != nil {
		t.Fatalf("OnWrite: %v", err)
	}
	if id, ok := res.Current(ctx); !ok || id != 1 {
		t.Fatalf("Current = (%d, %v), want (1, true)", id, ok)
	}
	if routes.calls != 1 {
		t.Errorf("invalidations = %d, want 1", routes.calls)
	}
}

func TestOnWrite_LowerOrderingIgnored(t *testing.T) {
	cur := rec(1, 2024, record.StatusPublished)
	old := rec(2, 2020, record.StatusPublished)
	res, _, routes := setup(cur, old)
	ctx := context.Background()

	if err := res.OnWrite(ctx, cur); err != nil {
		t.Fatalf("OnWrite: %v", err)
	}

	// A historical correction behind the pointer must not move it.
	if err := res.OnWrite(ctx, old); err != nil {
		t.Fatalf("OnWrite: %v", err)
	}
	if id, _ := res.Current(ctx); id != 1 {
		t.Fatalf("pointer moved backward to %d", id)
	}
	if routes.calls != 1 {
		t.Errorf("invalidations = %d, want 1", routes.calls)
	}
}

func TestOnWrite_HigherOrderingRepoints(t *testing.T) {
	cur := rec(1, 2023, record.StatusPublished)
	next := rec(2, 2024, record.StatusPublished)
	res, _, _ := setup(cur, next)
	ctx := context.Background()

	if err := res.OnWrite(ctx, cur); err != nil {
		t.Fatalf("OnWrite: %v", err)
	}
	if err := res.OnWrite(ctx, next); err != nil {
		t.Fatalf("OnWrite: %v", err)
	}
	if id, _ := res.Current(ctx); id != 2 {
		t.Fatalf("Current = %d, want 2", id)
	}
}

func TestOnWrite_DraftIgnored(t *testing.T) {
	draft := rec(1, 2024, record.StatusDraft)
	res, _, routes := setup(draft)
	ctx := context.Background()

	if err := res.OnWrite(ctx, draft); err != nil {
		t.Fatalf("OnWrite: %v", err)
	}
	if _, ok := res.Current(ctx); ok {
		t.Fatal("draft write pointed the resolver")
	}
	if routes.calls != 0 {
		t.Errorf("invalidations = %d, want 0", routes.calls)
	}
}

func TestOnWrite_UnpublishCurrentRecomputes(t *testing.T) {
	cur := rec(1, 2024, record.StatusPublished)
	prev := rec(2, 2023, record.StatusPublished)
	res, _, _ := setup(cur, prev)
	ctx := context.Background()

	if err := res.OnWrite(ctx, cur); err != nil {
		t.Fatalf("OnWrite: %v", err)
	}

	cur.Status = record.StatusDraft
	if err := res.OnWrite(ctx, cur); err != nil {
		t.Fatalf("OnWrite: %v", err)
	}
	if id, ok := res.Current(ctx); !ok || id != 2 {
		t.Fatalf("Current = (%d, %v), want (2, true)", id, ok)
	}
}

func TestOnWrite_UnpublishLastClearsToEmpty(t *testing.T) {
	only := rec(1, 2024, record.StatusPublished)
	res, _, routes := setup(only)
	ctx := context.Background()

	if err := res.OnWrite(ctx, only); err != nil {
		t.Fatalf("OnWrite: %v", err)
	}

	only.Status = record.StatusArchived
	if err := res.OnWrite(ctx, only); err != nil {
		t.Fatalf("OnWrite: %v", err)
	}
	if _, ok := res.Current(ctx); ok {
		t.Fatal("resolver should fail closed to empty")
	}
	if routes.calls != 2 {
		t.Errorf("invalidations = %d, want 2 (point, then clear)", routes.calls)
	}
}

func TestOnWrite_DanglingPointerRecomputes(t *testing.T) {
	next := rec(2, 2024, record.StatusPublished)
	res, _, _ := setup(next)
	ctx := context.Background()

	// Seed a pointer at a record the series no longer holds.
	if err := res.settings.Set(ctx, "board.current", "99"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := res.OnWrite(ctx, next); err != nil {
		t.Fatalf("OnWrite: %v", err)
	}
	if id, _ := res.Current(ctx); id != 2 {
		t.Fatalf("Current = %d, want 2", id)
	}
}
