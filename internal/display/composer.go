// internal/display/composer.go
//
// Display composer: assembles a record's fields into an ordered detail
// block.
//
// Context
//   Compose walks a type's field registry in insertion order and attaches
//   the value each view mode asks for.  Raw mode returns every descriptor
//   unchanged, edit mode attaches edit-context values, and display mode
//   keeps only display-flagged fields, computes display values, and drops
//   entries whose value came out empty, so a never-set field is absent
//   rather than blank.
//
//   Two post-processing hooks shape the display result:
//
//   •  Pairing.  An address-number field consumes its paired
//      address-addition inline ("12 A"), provided the addition was
//      registered before the reference; an unresolved pairing is silently
//      omitted.
//   •  Type merges.  A type may register a merge hook that folds adjacent
//      entries into one combined line (a since/ceased pair becomes a single
//      "Active" entry).  Merges are type-specific post-processing, not part
//      of the engine.
//
// Style
//   Full sentences, two spaces after periods, Oxford commas.

package display

import (
	"sync"

	"github.com/vgsr/entity/internal/entity"
	"github.com/vgsr/entity/internal/record"
)

// Entry is one line of the composed detail block.
type Entry struct {
	Key   string
	Label string
	Value string
	HTML  bool // true when Value carries markup (phone links)
}

// MergeFunc reshapes a composed display result for one type.
type MergeFunc func([]Entry) []Entry

var (
	mergeMu sync.RWMutex
	mergers = map[string]MergeFunc{}
)

// RegisterMerge installs the display merge hook for a type.  Called from
// internal/org at boot; a second registration replaces the first.
func RegisterMerge(typeName string, fn MergeFunc) {
	mergeMu.Lock()
	mergers[typeName] = fn
	mergeMu.Unlock()
}

// Compose builds the ordered entry list for rec under the given view.
func Compose(e *entity.Engine, t *entity.Type, rec *record.Record, view entity.View) []Entry {
	if view.Mode != entity.ModeDisplay {
		return composePlain(e, t, rec, view)
	}
	return composeDisplay(e, t, rec, view)
}

// composePlain handles raw and edit modes: every field, no filtering.
func composePlain(e *entity.Engine, t *entity.Type, rec *record.Record, view entity.View) []Entry {
	fields := t.Fields()
	out := make([]Entry, 0, len(fields))
	for _, f := range fields {
		out = append(out, Entry{
			Key:   f.Key,
			Label: f.Label,
			Value: e.Get(f, rec, view),
		})
	}
	return out
}

func composeDisplay(e *entity.Engine, t *entity.Type, rec *record.Record, view entity.View) []Entry {
	fields := t.Fields()

	// Addition fields consumed by an earlier-registered pairing do not
	// appear as standalone entries.
	consumed := map[string]struct{}{}
	seen := map[string]struct{}{}
	for _, f := range fields {
		if f.PairWith != "" {
			if _, earlier := seen[f.PairWith]; earlier {
				consumed[f.PairWith] = struct{}{}
			}
		}
		seen[f.Key] = struct{}{}
	}

	out := make([]Entry, 0, len(fields))
	for _, f := range fields {
		if !f.Display {
			continue
		}
		if _, skip := consumed[f.Key]; skip {
			continue
		}

		val := e.Get(f, rec, view)
		if val == "" {
			continue
		}

		if f.PairWith != "" {
			if pf, ok := t.Field(f.PairWith); ok {
				if _, earlier := consumed[f.PairWith]; earlier {
					if extra := e.Get(pf, rec, view); extra != "" {
						val += " " + extra
					}
				}
			}
		}

		out = append(out, Entry{
			Key:   f.Key,
			Label: f.Label,
			Value: val,
			HTML:  f.Kind == entity.KindPhone,
		})
	}

	if fn := mergeFor(t.Name); fn != nil {
		out = fn(out)
	}
	return out
}

func mergeFor(typeName string) MergeFunc {
	mergeMu.RLock()
	defer mergeMu.RUnlock()
	return mergers[typeName]
}
