// internal/ancestry/resolver_test.go
//
// Unit-tests for parent resolution, slug chains, and the archive gate.
//
// Run: go test ./internal/ancestry -v

package ancestry

import (
	"context"
	"testing"

	"github.com/vgsr/entity/internal/entity"
	"github.com/vgsr/entity/internal/record"
)

// fakeRecords satisfies RecordSource over a fixed record set.
type fakeRecords struct {
	recs map[uint64]*record.Record
}

func (f *fakeRecords) ByID(_ context.Context, id uint64) (*record.Record, error) {
	return f.recs[id], nil
}

// fakeSettings satisfies SettingSource with a plain map.
type fakeSettings struct {
	data map[string]uint64
}

func (f *fakeSettings) GetUint(key string) (uint64, bool) {
	v, ok := f.data[key]
	return v, ok
}

func parentOf(id uint64) *uint64 { return &id }

func TestParentSlug_Chain(t *testing.T) {
	recs := &fakeRecords{recs: map[uint64]*record.Record{
		3: {ID: 3, Slug: "about"},
		7: {ID: 7, Slug: "houses", ParentID: parentOf(3)},
	}}
	sets := &fakeSettings{data: map[string]uint64{"house.parent": 7}}
	res := New(recs, sets)
	ctx := context.Background()

	if got := res.ParentSlug(ctx, "house"); got != "about/houses" {
		t.Fatalf("ParentSlug = %q, want about/houses", got)
	}

	typ, _ := entity.NewType("house", "house", "House", "Houses")
	rec := &record.Record{ID: 20, Slug: "billitonia"}
	if got := res.PathFor(ctx, typ, rec); got != "/about/houses/house/billitonia" {
		t.Fatalf("PathFor = %q", got)
	}
}

func TestParentSlug_UnsetParent(t *testing.T) {
	res := New(&fakeRecords{recs: map[uint64]*record.Record{}},
		&fakeSettings{data: map[string]uint64{}})
	ctx := context.Background()

	if got := res.ParentSlug(ctx, "chapter"); got != "" {
		t.Fatalf("ParentSlug = %q, want empty", got)
	}

	typ, _ := entity.NewType("chapter", "chapter", "Chapter", "Chapters")
	rec := &record.Record{ID: 5, Slug: "klassiek"}
	if got := res.PathFor(ctx, typ, rec); got != "/chapter/klassiek" {
		t.Fatalf("PathFor = %q, want /chapter/klassiek", got)
	}
}

func TestParent_DanglingSetting(t *testing.T) {
	res := New(&fakeRecords{recs: map[uint64]*record.Record{}},
		&fakeSettings{data: map[string]uint64{"house.parent": 99}})

	if got := res.Parent(context.Background(), "house"); got != 0 {
		t.Fatalf("Parent = %d, want 0 for a dangling setting", got)
	}
}

func TestParentSlug_CycleTerminates(t *testing.T) {
	recs := &fakeRecords{recs: map[uint64]*record.Record{
		1: {ID: 1, Slug: "a", ParentID: parentOf(2)},
		2: {ID: 2, Slug: "b", ParentID: parentOf(1)},
	}}
	sets := &fakeSettings{data: map[string]uint64{"house.parent": 1}}
	res := New(recs, sets)

	// The walk must stop on the revisit instead of looping.
	if got := res.ParentSlug(context.Background(), "house"); got != "b/a" {
		t.Fatalf("ParentSlug = %q, want b/a", got)
	}
}

func TestParent_CachedUntilInvalidate(t *testing.T) {
	recs := &fakeRecords{recs: map[uint64]*record.Record{
		7: {ID: 7, Slug: "houses"},
	}}
	sets := &fakeSettings{data: map[string]uint64{"house.parent": 7}}
	res := New(recs, sets)
	ctx := context.Background()

	if got := res.Parent(ctx, "house"); got != 7 {
		t.Fatalf("Parent = %d, want 7", got)
	}

	// A settings change is invisible until the cache is dropped.
	sets.data["house.parent"] = 0
	if got := res.Parent(ctx, "house"); got != 7 {
		t.Fatalf("cached Parent = %d, want 7", got)
	}
	res.Invalidate("house")
	if got := res.Parent(ctx, "house"); got != 0 {
		t.Fatalf("Parent after invalidate = %d, want 0", got)
	}
}

func TestVisible(t *testing.T) {
	archived, _ := entity.NewType("chapter", "chapter", "Chapter", "Chapters")
	archived.HasArchive = true
	plain, _ := entity.NewType("board", "board", "Board", "Boards")

	cases := []struct {
		name     string
		t        *entity.Type
		status   record.Status
		elevated bool
		want     bool
	}{
		{"published always", plain, record.StatusPublished, false, true},
		{"draft never", archived, record.StatusDraft, true, false},
		{"archived needs elevation", archived, record.StatusArchived, false, false},
		{"archived elevated", archived, record.StatusArchived, true, true},
		{"archived without archive", plain, record.StatusArchived, true, false},
	}
	for _, c := range cases {
		rec := &record.Record{ID: 1, Status: c.status}
		if got := Visible(c.t, rec, c.elevated); got != c.want {
			t.Errorf("%s: Visible = %v, want %v", c.name, got, c.want)
		}
	}
}
