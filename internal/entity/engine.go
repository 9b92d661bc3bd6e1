// internal/entity/engine.go
//
// The entity type engine: field get and save.
//
// Context
//   Get computes a field's value for one of three view modes; Save
//   validates, transforms, and persists a submitted value.  Both dispatch
//   through the strategy table in kind.go.  Get never errors: an absent or
//   unparsable stored value yields "", never a partial value.  Save leaves
//   the stored value untouched on rejection and reports a numeric code from
//   the owning type's error table; a batch of saves accumulates codes
//   instead of aborting on the first failure.
//
// Workflow
//   •  The engine persists through the narrow MetaStore contract, which
//      *record.Store satisfies.  Tests substitute an in-memory fake.
//   •  View carries the request context the formatters need (mode, locale,
//      and the mobile flag) as explicit parameters, never ambient state.
//
// Style
//   Full sentences, two spaces after periods, Oxford commas.

package entity

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/vgsr/entity/internal/metrics"
	"github.com/vgsr/entity/internal/record"
)

// -----------------------------------------------------------------------------
// View modes
// -----------------------------------------------------------------------------

// Mode selects which transformation Get applies.
type Mode int

const (
	ModeRaw Mode = iota
	ModeEdit
	ModeDisplay
)

// View is the per-request context threaded into every Get call.
type View struct {
	Mode   Mode
	Locale string // overrides the engine locale when non-empty
	Mobile bool   // true for phone/tablet viewers; drives the link scheme
}

// -----------------------------------------------------------------------------
// Engine
// -----------------------------------------------------------------------------

// Settings carries the organization constants validation depends on.  It
// mirrors the `org` config section; main copies it over at boot so this
// package stays free of the config loader.
type Settings struct {
	BaseYear     int
	CountryCode  string
	MobilePrefix string
	AreaPrefixes []string
	Locale       string
}

// MetaStore is the persistence contract the engine writes through.
// *record.Store satisfies it.
type MetaStore interface {
	SetMeta(ctx context.Context, recordID uint64, key, value string) error
	DeleteMeta(ctx context.Context, recordID uint64, key string) error
	SetOrdering(ctx context.Context, recordID uint64, ordering int) error
}

// Engine evaluates and persists metadata fields.  Safe for concurrent use;
// it holds no per-request state.
type Engine struct {
	meta MetaStore
	org  Settings
}

// NewEngine returns an engine bound to a meta store and org settings.
func NewEngine(meta MetaStore, org Settings) *Engine {
	return &Engine{meta: meta, org: org}
}

// -----------------------------------------------------------------------------
// Get
// -----------------------------------------------------------------------------

// Get computes the value of field f on rec for the given view.  It never
// errors; missing or unparsable values produce "".
func (e *Engine) Get(f Field, rec *record.Record, view View) string {
	raw := e.rawValue(f, rec)
	if raw == "" {
		return ""
	}

	st := strategies[f.Kind]
	switch view.Mode {
	case ModeDisplay:
		if st.display != nil {
			if view.Locale == "" {
				view.Locale = e.org.Locale
			}
			return st.display(e, f, raw, view)
		}
	case ModeEdit:
		if st.edit != nil {
			return st.edit(e, raw)
		}
	}
	return raw
}

// rawValue reads the stored value from the dedicated ordering slot or the
// generic meta map.  An ordering of zero reads as empty, matching the
// deleted state.
func (e *Engine) rawValue(f Field, rec *record.Record) string {
	if f.Store == OrderingSlot {
		if rec.Ordering == 0 {
			return ""
		}
		return strconv.Itoa(rec.Ordering)
	}
	return rec.Meta[f.Store]
}

// -----------------------------------------------------------------------------
// Save
// -----------------------------------------------------------------------------

// Save validates, transforms, and persists one submitted value.  An empty
// sanitized value deletes the stored one; the literal "0" is a valid value
// and is kept.  On rejection nothing is persisted and a *ValidationError
// carrying the field's code is returned.
func (e *Engine) Save(ctx context.Context, t *Type, f Field, raw string, rec *record.Record) error {
	metrics.FieldSavesTotal.WithLabelValues(t.Name).Inc()

	val := Sanitize(raw)
	if val == "" {
		return e.delete(ctx, f, rec)
	}

	stored := val
	if st := strategies[f.Kind]; st.save != nil {
		var ok bool
		stored, ok = st.save(e, val)
		if !ok {
			metrics.FieldSaveErrorsTotal.WithLabelValues(t.Name).Inc()
			return &ValidationError{Type: t.Name, Field: f.Key, Code: f.ErrorCode}
		}
	}

	if f.Store == OrderingSlot {
		n, err := strconv.Atoi(stored)
		if err != nil {
			// Only numeric kinds may target the ordering slot.
			metrics.FieldSaveErrorsTotal.WithLabelValues(t.Name).Inc()
			return &ValidationError{Type: t.Name, Field: f.Key, Code: f.ErrorCode}
		}
		if err := e.meta.SetOrdering(ctx, rec.ID, n); err != nil {
			return err
		}
		rec.Ordering = n
		return nil
	}

	if err := e.meta.SetMeta(ctx, rec.ID, f.Store, stored); err != nil {
		return err
	}
	if rec.Meta == nil {
		rec.Meta = make(map[string]string)
	}
	rec.Meta[f.Store] = stored
	return nil
}

// delete clears the stored value for f.  The ordering slot resets to zero.
func (e *Engine) delete(ctx context.Context, f Field, rec *record.Record) error {
	if f.Store == OrderingSlot {
		if err := e.meta.SetOrdering(ctx, rec.ID, 0); err != nil {
			return err
		}
		rec.Ordering = 0
		return nil
	}
	if err := e.meta.DeleteMeta(ctx, rec.ID, f.Store); err != nil {
		return err
	}
	delete(rec.Meta, f.Store)
	return nil
}

// SaveFields saves every submitted value present in values, in field
// registration order.  Validation failures accumulate as codes and do not
// abort the rest of the batch; storage errors do.
func (e *Engine) SaveFields(ctx context.Context, t *Type, rec *record.Record,
	values map[string]string) ([]int, error) {

	var codes []int
	for _, f := range t.Fields() {
		raw, present := values[f.Key]
		if !present {
			continue
		}

		err := e.Save(ctx, t, f, raw, rec)
		if err == nil {
			continue
		}

		var verr *ValidationError
		if errors.As(err, &verr) {
			codes = append(codes, verr.Code)
			zap.S().Debugw("field save rejected",
				"type", t.Name, "field", f.Key, "code", verr.Code)
			continue
		}
		return codes, err
	}
	return codes, nil
}
