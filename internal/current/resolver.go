// internal/current/resolver.go
//
// Latest-record pointer for rotating-series entity types.
//
// Context
// -------
// The rotating board keeps one authoritative "current record": the
// published record with the highest ordering attribute.  The pointer is a
// single settings-store scalar (`<type>.current`), recomputed synchronously
// on every write to the series and only read back at request time.  It is
// never recomputed lazily on read.
//
// State machine
// -------------
//   Empty ──publish R──────────────────────▶ Pointing(R)
//   Pointing(C) ──publish R, R.ord > C.ord─▶ Pointing(R)
//   Pointing(C) ──publish R, R.ord ≤ C.ord─▶ Pointing(C)   (ignored)
//   Pointing(C) ──unpublish C──────────────▶ top-of-series, or Empty
//
// Every transition bumps the route-table version so the canonical listing
// path is rebuilt from the new pointer.  The resolver never surfaces a
// user-facing error: with no published record it fails closed to Empty and
// the listing path becomes unroutable until something is published.
//
// Writes are serialized with a mutex.  The settings store is shared, so
// this is the single serialization point the recompute step needs inside
// one process.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package current

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/vgsr/entity/internal/metrics"
	"github.com/vgsr/entity/internal/record"
)

// SeriesStore is the slice of *record.Store the resolver needs.
type SeriesStore interface {
	ByID(ctx context.Context, id uint64) (*record.Record, error)
	TopOfSeries(ctx context.Context, typeName string) (*record.Record, error)
}

// PointerStore is the slice of *settings.Store the resolver needs.
type PointerStore interface {
	GetUint(key string) (uint64, bool)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Invalidator is notified after every pointer transition.  The routing
// table satisfies it.
type Invalidator interface {
	Invalidate()
}

// Resolver maintains the latest-record pointer of one series.
type Resolver struct {
	typeName string
	key      string

	mu       sync.Mutex
	store    SeriesStore
	settings PointerStore
	routes   Invalidator
}

// New returns a resolver for typeName.  routes may be nil during tests.
func New(typeName string, store SeriesStore, settings PointerStore, routes Invalidator) *Resolver {
	return &Resolver{
		typeName: typeName,
		key:      typeName + ".current",
		store:    store,
		settings: settings,
		routes:   routes,
	}
}

// Current returns the pointed-to record id.  The boolean is false in the
// Empty state.  Read time only loads the pointer; no recomputation.
func (r *Resolver) Current(_ context.Context) (uint64, bool) {
	return r.settings.GetUint(r.key)
}

// OnWrite observes one successful write to a record in the series and
// applies the transition rules.  Storage errors are returned so the caller
// can log them; validation-style outcomes are silent by design.
func (r *Resolver) OnWrite(ctx context.Context, rec *record.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, pointing := r.settings.GetUint(r.key)

	// Case 1: the write touched the pointed-to record.
	if pointing && rec.ID == cur {
		if rec.Published() {
			return nil
		}
		return r.recompute(ctx)
	}

	// Case 2: some other record.  A non-published write, or one that does
	// not outrank the current pointer, is silently ignored; a historical
	// correction cannot promote a record behind the current one.
	if !rec.Published() {
		return nil
	}

	if !pointing {
		return r.point(ctx, rec.ID)
	}

	curRec, err := r.store.ByID(ctx, cur)
	if err != nil {
		return err
	}
	if curRec == nil {
		// Dangling pointer; rebuild from the series.
		return r.recompute(ctx)
	}
	if rec.Ordering <= curRec.Ordering {
		return nil
	}
	return r.point(ctx, rec.ID)
}

// recompute re-runs the top-of-series query restricted to published
// records and repoints, or fails closed to Empty.
func (r *Resolver) recompute(ctx context.Context) error {
	metrics.CurrentRecomputeTotal.Inc()

	top, err := r.store.TopOfSeries(ctx, r.typeName)
	if err != nil {
		return err
	}
	if top == nil {
		return r.clear(ctx)
	}
	return r.point(ctx, top.ID)
}

// point transitions to Pointing(id) and invalidates routing.
func (r *Resolver) point(ctx context.Context, id uint64) error {
	if cur, ok := r.settings.GetUint(r.key); ok && cur == id {
		return nil
	}
	if err := r.settings.Set(ctx, r.key, strconv.FormatUint(id, 10)); err != nil {
		return err
	}
	zap.S().Infow("current record moved", "type", r.typeName, "record", id)
	r.invalidate()
	return nil
}

// clear transitions to Empty and invalidates routing.
func (r *Resolver) clear(ctx context.Context) error {
	if _, ok := r.settings.GetUint(r.key); !ok {
		return nil
	}
	if err := r.settings.Delete(ctx, r.key); err != nil {
		return err
	}
	zap.S().Warnw("current record cleared, series has no published record",
		"type", r.typeName)
	r.invalidate()
	return nil
}

func (r *Resolver) invalidate() {
	if r.routes != nil {
		r.routes.Invalidate()
	}
}
