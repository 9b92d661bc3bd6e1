// internal/routing/table.go
//
// Current-record route table and middleware.
//
// Context
// -------
// A rotating-series type exposes one canonical listing address (for the
// board, `/board`) that must route to whichever record the latest-record
// resolver currently points at.  The Table holds those rewrite rules plus a
// version counter; the resolver bumps the version on every pointer
// transition, and the middleware rebuilds the rules lazily on the next
// request that sees a stale table.
//
// Workflow
// --------
//   1. Boot wires routing.NewTable() and hands it to the resolver as its
//      Invalidator.
//   2. The web router installs routing.Middleware(table, builder) early in
//      the chain.
//   3. Middleware rewrites r.URL.Path on a rule hit; otherwise it falls
//      through untouched.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.

package routing

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/vgsr/entity/internal/metrics"
)

// -----------------------------------------------------------------------------
// Table
// -----------------------------------------------------------------------------

// Builder produces the full rule set: canonical path → target path.  The
// web wiring supplies one that asks every rotating type's resolver for its
// current record.
type Builder func(ctx context.Context) (map[string]string, error)

// Table stores rewrite rules plus version state.  Zero value is unusable;
// construct with NewTable.
type Table struct {
	mu      sync.RWMutex
	data    map[string]string
	version int // bumped by Invalidate
	built   int // version the rules were last built against
}

// NewTable returns an empty table that reports itself stale, so the first
// request triggers a build.
func NewTable() *Table {
	return &Table{data: map[string]string{}, version: 1}
}

// Invalidate marks the rules stale.  Satisfies current.Invalidator.
func (t *Table) Invalidate() {
	t.mu.Lock()
	t.version++
	t.mu.Unlock()
}

// Rebuild replaces the rule set using build.  On failure the previous
// rules stay in place and the table remains stale.
func (t *Table) Rebuild(ctx context.Context, build Builder) error {
	t.mu.RLock()
	target := t.version
	t.mu.RUnlock()

	fresh, err := build(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.data = fresh
	t.built = target
	t.mu.Unlock()

	metrics.RouteRebuildTotal.Inc()
	zap.L().Debug("route table rebuilt", zap.Int("rules", len(fresh)))
	return nil
}

func (t *Table) lookup(path string) (string, bool) {
	t.mu.RLock()
	target, ok := t.data[path]
	t.mu.RUnlock()
	return target, ok
}

func (t *Table) stale() bool {
	t.mu.RLock()
	s := t.built != t.version
	t.mu.RUnlock()
	return s
}

// -----------------------------------------------------------------------------
// Middleware factory
// -----------------------------------------------------------------------------

// Middleware returns a chi-compatible middleware that rewrites canonical
// listing paths to the current record's path.
func Middleware(t *Table, build Builder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			if t.stale() {
				if err := t.Rebuild(r.Context(), build); err != nil {
					zap.L().Warn("route table rebuild failed", zap.Error(err))
				}
			}

			if target, ok := t.lookup(r.URL.Path); ok {
				original := r.URL.Path
				r.URL.Path = target
				r.RequestURI = target
				zap.L().Debug("current-record rewrite",
					zap.String("from", original),
					zap.String("to", target))
			}

			next.ServeHTTP(w, r)
		})
	}
}
