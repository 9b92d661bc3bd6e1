// internal/ancestry/resolver.go
//
// Parent-page resolution, slug chains, and archive gating.
//
// Context
// -------
// Each entity type may be nested under a configured "parent page" record
// (`<type>.parent` in the settings store).  The resolver turns that setting
// into a record id, caches the answer for the process lifetime, and builds
// the hierarchical slug by walking the ancestor chain.  It also owns the
// archive visibility rule: archived records are shown only to viewers the
// authorization collaborator marks as elevated, decided per request and
// never cached.
//
// The chain walk guards against misconfigured cycles: visited ids are
// tracked and the walk stops on a revisit or after maxDepth levels, logging
// a warning instead of looping forever.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package ancestry

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/vgsr/entity/internal/entity"
	"github.com/vgsr/entity/internal/record"
)

// maxDepth caps the ancestor walk; no sane site nests deeper.
const maxDepth = 32

// RecordSource is the slice of *record.Store the resolver needs.
type RecordSource interface {
	ByID(ctx context.Context, id uint64) (*record.Record, error)
}

// SettingSource is the slice of *settings.Store the resolver needs.
type SettingSource interface {
	GetUint(key string) (uint64, bool)
}

// Resolver resolves parent pages and slug chains.  Safe for concurrent
// use; first resolutions per type are collapsed through singleflight.
type Resolver struct {
	store    RecordSource
	settings SettingSource

	mu     sync.RWMutex
	cache  map[string]uint64 // type name → parent id, 0 = none
	single singleflight.Group
}

// New returns a Resolver bound to its collaborators.
func New(store RecordSource, settings SettingSource) *Resolver {
	return &Resolver{store: store, settings: settings, cache: make(map[string]uint64)}
}

// Parent returns the configured parent record id for a type, or 0 when the
// setting is unset or dangling.  The answer is cached after the first
// resolution for the process lifetime.
func (r *Resolver) Parent(ctx context.Context, typeName string) uint64 {
	r.mu.RLock()
	id, hit := r.cache[typeName]
	r.mu.RUnlock()
	if hit {
		return id
	}

	v, _, _ := r.single.Do(typeName, func() (any, error) {
		resolved := r.resolve(ctx, typeName)
		r.mu.Lock()
		r.cache[typeName] = resolved
		r.mu.Unlock()
		return resolved, nil
	})
	return v.(uint64)
}

// resolve reads the setting and verifies the referenced record exists.
func (r *Resolver) resolve(ctx context.Context, typeName string) uint64 {
	id, ok := r.settings.GetUint(typeName + ".parent")
	if !ok || id == 0 {
		return 0
	}

	rec, err := r.store.ByID(ctx, id)
	if err != nil {
		zap.S().Warnw("parent lookup failed", "type", typeName, "err", err)
		return 0
	}
	if rec == nil {
		zap.S().Warnw("parent setting is dangling", "type", typeName, "record", id)
		return 0
	}
	return id
}

// ParentSlug walks the ancestor chain from the type's parent upward and
// joins each ancestor's slug with "/", most distant ancestor first.  An
// unset parent yields "".
func (r *Resolver) ParentSlug(ctx context.Context, typeName string) string {
	id := r.Parent(ctx, typeName)
	if id == 0 {
		return ""
	}

	var segments []string
	visited := map[uint64]struct{}{}

	for id != 0 && len(segments) < maxDepth {
		if _, seen := visited[id]; seen {
			zap.S().Warnw("parent chain contains a cycle, truncating",
				"type", typeName, "record", id)
			break
		}
		visited[id] = struct{}{}

		rec, err := r.store.ByID(ctx, id)
		if err != nil || rec == nil {
			break
		}

		segments = append([]string{rec.Slug}, segments...)
		if rec.ParentID == nil {
			break
		}
		id = *rec.ParentID
	}

	return strings.Join(segments, "/")
}

// Invalidate drops the cached parent for one type, for admin tooling that
// rewrites the setting at runtime.
func (r *Resolver) Invalidate(typeName string) {
	r.mu.Lock()
	delete(r.cache, typeName)
	r.mu.Unlock()
}

// Visible applies the archive gate: published records are always visible,
// archived ones only on archive-enabled types and only to elevated
// viewers, and drafts never on the public surface.
func Visible(t *entity.Type, rec *record.Record, elevated bool) bool {
	switch rec.Status {
	case record.StatusPublished:
		return true
	case record.StatusArchived:
		return t.HasArchive && elevated
	default:
		return false
	}
}

// PathFor builds the public path of a record under its type's parent
// chain, e.g. "/about/houses/billitonia".
func (r *Resolver) PathFor(ctx context.Context, t *entity.Type, rec *record.Record) string {
	base := r.ParentSlug(ctx, t.Name)
	parts := make([]string, 0, 3)
	if base != "" {
		parts = append(parts, base)
	}
	parts = append(parts, t.Name, rec.Slug)
	return "/" + strings.Join(parts, "/")
}
