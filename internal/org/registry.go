// internal/org/registry.go
//
// Static definitions of the organization's entity types.
//
// Context
//   The three recurring entity kinds are defined here once at boot: the
//   rotating governing board, the interest-group chapters, and the
//   residence houses.  Each definition registers its metadata fields, its
//   human error table, and, where useful, a display merge hook with the
//   composer.  The definitions never change at runtime.
//
// Style
//   Full sentences, two spaces after periods, Oxford commas.

package org

import (
	"fmt"

	"github.com/vgsr/entity/internal/display"
	"github.com/vgsr/entity/internal/entity"
)

// Registry holds the constructed types keyed by name, preserving
// definition order for admin menus.
type Registry struct {
	types map[string]*entity.Type
	order []string
}

// Build constructs every entity type.  It fails fast on a definition
// error, which would be a programming mistake rather than bad input.
func Build() (*Registry, error) {
	r := &Registry{types: make(map[string]*entity.Type)}

	for _, build := range []func() (*entity.Type, error){
		boardType,
		chapterType,
		houseType,
	} {
		t, err := build()
		if err != nil {
			return nil, fmt.Errorf("org: %w", err)
		}
		r.types[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return r, nil
}

// Get returns a type by name.  The boolean is false when unknown.
func (r *Registry) Get(name string) (*entity.Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Names returns the type names in definition order.
func (r *Registry) Names() []string { return r.order }

// Rotating reports whether a type keeps a latest-record pointer.  Only the
// board rotates today.
func (r *Registry) Rotating(name string) bool { return name == "board" }

// -----------------------------------------------------------------------------
// Board
// -----------------------------------------------------------------------------

// boardType models one governing-board term.  The season field lives in
// the dedicated ordering slot: the starting year of the term ranks board
// records within the series and feeds the latest-record resolver.
func boardType() (*entity.Type, error) {
	t, err := entity.NewType("board", "board", "Board", "Boards")
	if err != nil {
		return nil, err
	}

	t.Errors = map[int]string{
		1: "The given <strong>Season</strong> is not a valid year within the organization's history.",
	}

	err = t.RegisterField(entity.Field{
		Key:       "season",
		Label:     "Season",
		Kind:      entity.KindYear,
		Store:     entity.OrderingSlot,
		Display:   true,
		ErrorCode: 1,
	})
	if err != nil {
		return nil, err
	}

	display.RegisterMerge("board", mergeSeason)
	return t, nil
}

// mergeSeason widens the bare starting year into the "2023/2024" season
// label the organization uses.
func mergeSeason(entries []display.Entry) []display.Entry {
	for i, e := range entries {
		if e.Key != "season" {
			continue
		}
		if y, ok := parseYear(e.Value); ok {
			entries[i].Value = fmt.Sprintf("%d/%d", y, y+1)
		}
	}
	return entries
}

// -----------------------------------------------------------------------------
// Chapter
// -----------------------------------------------------------------------------

// chapterType models an interest-group chapter with a founding and an
// optional ceasing year.  Chapters keep an archive for ceased ones.
func chapterType() (*entity.Type, error) {
	t, err := entity.NewType("chapter", "chapter", "Chapter", "Chapters")
	if err != nil {
		return nil, err
	}
	t.HasArchive = true

	t.Errors = map[int]string{
		1: "The given <strong>Since</strong> value is not a valid year within the organization's history.",
		2: "The given <strong>Ceased</strong> value is not a valid year within the organization's history.",
	}

	fields := []entity.Field{
		{Key: "since", Label: "Since", Kind: entity.KindYear, Display: true, ErrorCode: 1},
		{Key: "ceased", Label: "Ceased", Kind: entity.KindYear, Display: true, ErrorCode: 2},
	}
	for _, f := range fields {
		if err := t.RegisterField(f); err != nil {
			return nil, err
		}
	}

	display.RegisterMerge("chapter", mergeActive)
	return t, nil
}

// mergeActive folds a since/ceased pair into a single "Active" line.  A
// chapter without a ceased year keeps its plain "Since" entry.
func mergeActive(entries []display.Entry) []display.Entry {
	var since, ceased string
	for _, e := range entries {
		switch e.Key {
		case "since":
			since = e.Value
		case "ceased":
			ceased = e.Value
		}
	}
	if since == "" || ceased == "" {
		return entries
	}

	out := make([]display.Entry, 0, len(entries)-1)
	for _, e := range entries {
		switch e.Key {
		case "since":
			out = append(out, display.Entry{
				Key:   "active",
				Label: "Active",
				Value: "between " + since + " and " + ceased,
			})
		case "ceased":
			// consumed by the combined entry
		default:
			out = append(out, e)
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// House
// -----------------------------------------------------------------------------

// houseType models a residence house: occupancy date, address block, and
// phone.  The address addition is registered before the number that pairs
// with it, so the pairing resolves.
func houseType() (*entity.Type, error) {
	t, err := entity.NewType("house", "house", "House", "Houses")
	if err != nil {
		return nil, err
	}
	t.HasArchive = true

	t.Errors = map[int]string{
		1: "The given <strong>Since</strong> value is not a valid date (use YYYY/MM/DD).",
		2: "The given <strong>Ceased</strong> value is not a valid year within the organization's history.",
		3: "The given <strong>Postcode</strong> does not look like 9999 AA.",
		4: "The given <strong>Phone</strong> number is not a valid ten-digit number.",
	}

	fields := []entity.Field{
		{Key: "since", Label: "Since", Kind: entity.KindDate, Display: true, ErrorCode: 1},
		{Key: "ceased", Label: "Ceased", Kind: entity.KindYear, Display: true, ErrorCode: 2},
		{Key: "street", Label: "Street", Kind: entity.KindText, Display: true},
		{Key: "addition", Label: "Addition", Kind: entity.KindAddressAddition, Display: true},
		{Key: "number", Label: "Number", Kind: entity.KindAddressNumber, Display: true,
			PairWith: "addition"},
		{Key: "postcode", Label: "Postcode", Kind: entity.KindPostcode, Display: true, ErrorCode: 3},
		{Key: "city", Label: "City", Kind: entity.KindText, Display: true},
		{Key: "phone", Label: "Phone", Kind: entity.KindPhone, Display: true, ErrorCode: 4},
	}
	for _, f := range fields {
		if err := t.RegisterField(f); err != nil {
			return nil, err
		}
	}

	display.RegisterMerge("house", mergeAddress)
	return t, nil
}

// mergeAddress folds street and number (which already carries its paired
// addition) into one "Address" line.
func mergeAddress(entries []display.Entry) []display.Entry {
	var street, number string
	for _, e := range entries {
		switch e.Key {
		case "street":
			street = e.Value
		case "number":
			number = e.Value
		}
	}
	if street == "" || number == "" {
		return entries
	}

	out := make([]display.Entry, 0, len(entries)-1)
	for _, e := range entries {
		switch e.Key {
		case "street":
			out = append(out, display.Entry{
				Key:   "address",
				Label: "Address",
				Value: street + " " + number,
			})
		case "number":
			// consumed by the combined entry
		default:
			out = append(out, e)
		}
	}
	return out
}

// parseYear is a tiny helper for mergers that reshape year values.
func parseYear(s string) (int, bool) {
	if len(s) != 4 {
		return 0, false
	}
	y := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		y = y*10 + int(r-'0')
	}
	return y, true
}
