// internal/display/composer_test.go
//
// Unit-tests for the display composer: field ordering, empty omission,
// address pairing, and type merge hooks.
//
// Run: go test ./internal/display -v

package display

import (
	"testing"

	"github.com/vgsr/entity/internal/entity"
	"github.com/vgsr/entity/internal/record"
)

func testEngine() *entity.Engine {
	return entity.NewEngine(nil, entity.Settings{
		BaseYear:     1950,
		CountryCode:  "31",
		MobilePrefix: "06",
		Locale:       "nl_NL",
	})
}

// addressType builds a house-like type with a paired address block and one
// admin-only field that must never reach the display block.
func addressType(t *testing.T, name string) *entity.Type {
	t.Helper()
	typ, err := entity.NewType(name, name, "House", "Houses")
	if err != nil {
		t.Fatalf("NewType: %v", err)
	}

	fields := []entity.Field{
		{Key: "street", Label: "Street", Kind: entity.KindText, Display: true},
		{Key: "addition", Label: "Addition", Kind: entity.KindAddressAddition, Display: true},
		{Key: "number", Label: "Number", Kind: entity.KindAddressNumber, Display: true,
			PairWith: "addition"},
		{Key: "note", Label: "Note", Kind: entity.KindText},
	}
	for _, f := range fields {
		if err := typ.RegisterField(f); err != nil {
			t.Fatalf("RegisterField(%s): %v", f.Key, err)
		}
	}
	return typ
}

func keys(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out
}

func TestComposeDisplay_OmitsEmptyAndHidden(t *testing.T) {
	typ := addressType(t, "house_a")
	rec := &record.Record{ID: 1, Meta: map[string]string{
		"street": "Oude Delft",
		"note":   "internal only",
	}}

	got := Compose(testEngine(), typ, rec, entity.View{Mode: entity.ModeDisplay})
	if len(got) != 1 || got[0].Key != "street" {
		t.Fatalf("entries = %v, want only street", keys(got))
	}
}

func TestComposeDisplay_PairInline(t *testing.T) {
	typ := addressType(t, "house_b")
	rec := &record.Record{ID: 1, Meta: map[string]string{
		"street":   "Oude Delft",
		"number":   "12",
		"addition": "A",
	}}

	got := Compose(testEngine(), typ, rec, entity.View{Mode: entity.ModeDisplay})
	if len(got) != 2 {
		t.Fatalf("entries = %v, want street and number", keys(got))
	}
	if got[1].Key != "number" || got[1].Value != "12 A" {
		t.Fatalf("number entry = %+v, want value \"12 A\"", got[1])
	}
	for _, e := range got {
		if e.Key == "addition" {
			t.Fatal("consumed addition rendered standalone")
		}
	}
}

func TestComposeDisplay_PairWithoutAddition(t *testing.T) {
	typ := addressType(t, "house_c")
	rec := &record.Record{ID: 1, Meta: map[string]string{"number": "12"}}

	got := Compose(testEngine(), typ, rec, entity.View{Mode: entity.ModeDisplay})
	if len(got) != 1 || got[0].Value != "12" {
		t.Fatalf("entries = %v, want bare number 12", got)
	}
}

func TestComposePlain_IncludesEverything(t *testing.T) {
	typ := addressType(t, "house_d")
	rec := &record.Record{ID: 1, Meta: map[string]string{"street": "Oude Delft"}}

	got := Compose(testEngine(), typ, rec, entity.View{Mode: entity.ModeEdit})
	if len(got) != 4 {
		t.Fatalf("edit entries = %v, want all four fields", keys(got))
	}
}

func TestComposeDisplay_MergeHook(t *testing.T) {
	typ := addressType(t, "house_e")
	RegisterMerge("house_e", func(entries []Entry) []Entry {
		return append(entries, Entry{Key: "extra", Label: "Extra", Value: "merged"})
	})

	rec := &record.Record{ID: 1, Meta: map[string]string{"street": "Oude Delft"}}
	got := Compose(testEngine(), typ, rec, entity.View{Mode: entity.ModeDisplay})

	last := got[len(got)-1]
	if last.Key != "extra" || last.Value != "merged" {
		t.Fatalf("merge hook not applied: %v", got)
	}
}

func TestComposeDisplay_PhoneIsHTML(t *testing.T) {
	typ, err := entity.NewType("house_f", "house_f", "House", "Houses")
	if err != nil {
		t.Fatalf("NewType: %v", err)
	}
	if err := typ.RegisterField(entity.Field{
		Key: "phone", Label: "Phone", Kind: entity.KindPhone, Display: true,
	}); err != nil {
		t.Fatalf("RegisterField: %v", err)
	}

	rec := &record.Record{ID: 1, Meta: map[string]string{"phone": "0612345678"}}
	got := Compose(testEngine(), typ, rec, entity.View{Mode: entity.ModeDisplay})
	if len(got) != 1 || !got[0].HTML {
		t.Fatalf("phone entry = %+v, want HTML flag", got)
	}
}
