// internal/web/handlers.go
//
// HTTP handlers for the entity surface.
//
// Context
//   Public surface: one listing page per type and one detail page per
//   record, both archive-gated through the per-request viewer.  Admin
//   surface: an edit form whose POST batches field saves through the
//   entity engine, nudges the latest-record resolver, and round-trips
//   accumulated validation codes via the `errors` query parameter.
//
// Workflow
//   •  The rotating board's canonical listing path is rewritten by
//      routing.Middleware before these handlers run; the listing handler
//      only sees `/board` when the pointer is Empty, which renders 404 by
//      design (the address is unroutable until a record is published).
//
// Style
//   Full sentences, two spaces after periods, Oxford commas.

package web

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vgsr/entity/internal/acl"
	"github.com/vgsr/entity/internal/ancestry"
	"github.com/vgsr/entity/internal/auth"
	"github.com/vgsr/entity/internal/current"
	"github.com/vgsr/entity/internal/display"
	"github.com/vgsr/entity/internal/entity"
	"github.com/vgsr/entity/internal/metrics"
	"github.com/vgsr/entity/internal/org"
	"github.com/vgsr/entity/internal/record"
	"github.com/vgsr/entity/internal/requestinfo"
	"github.com/vgsr/entity/internal/routing"
)

// Handler bundles the collaborators the routes need.
type Handler struct {
	Engine    *entity.Engine
	Registry  *org.Registry
	Records   *record.Store
	Ancestry  *ancestry.Resolver
	Resolvers map[string]*current.Resolver // rotating types only
	Table     *routing.Table               // nil disables rename invalidation
	DB        *sql.DB                      // audit-log role lookups
	Locale    string
}

// Routes mounts the public and admin endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/{type}", h.Listing)
	r.Get("/{type}/{slug}", h.Detail)
	r.Get("/admin/{type}/{id}", h.EditForm)
	r.Post("/admin/{type}/{id}", h.Save)
}

// Rules builds the current-record rewrite table: the canonical listing
// path of every rotating type maps to its current record's path.
func (h *Handler) Rules(ctx context.Context) (map[string]string, error) {
	rules := make(map[string]string)

	for name, res := range h.Resolvers {
		id, ok := res.Current(ctx)
		if !ok {
			continue
		}
		rec, err := h.Records.ByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		rules["/"+name] = "/" + name + "/" + rec.Slug
	}
	return rules, nil
}

// viewer returns the enriched request viewer, or a zero value when the
// middleware did not run (tests).
func viewer(r *http.Request) *requestinfo.Viewer {
	if v := requestinfo.FromContext(r.Context()); v != nil {
		return v
	}
	return &requestinfo.Viewer{}
}

// -----------------------------------------------------------------------------
// Public surface
// -----------------------------------------------------------------------------

// Listing renders all visible records of a type.  Rotating types have no
// listing of their own; their canonical path routes to the current record.
func (h *Handler) Listing(w http.ResponseWriter, r *http.Request) {
	typeName := chi.URLParam(r, "type")
	t, ok := h.Registry.Get(typeName)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if h.Registry.Rotating(typeName) {
		// Reached only while the pointer is Empty.
		http.NotFound(w, r)
		return
	}

	v := viewer(r)
	recs, err := h.Records.ByType(r.Context(), typeName, t.HasArchive && v.Elevated)
	if err != nil {
		zap.S().Errorw("listing query failed", "type", typeName, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	type item struct{ Title, Path string }
	items := make([]item, 0, len(recs))
	for i := range recs {
		if !ancestry.Visible(t, &recs[i], v.Elevated) {
			continue
		}
		items = append(items, item{
			Title: recs[i].Title,
			Path:  "/" + typeName + "/" + recs[i].Slug,
		})
	}

	render(w, "list", listTmpl, struct {
		Title string
		Items []item
	}{Title: t.Plural, Items: items})
}

// Detail renders one record's display block.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	typeName := chi.URLParam(r, "type")
	t, ok := h.Registry.Get(typeName)
	if !ok {
		http.NotFound(w, r)
		return
	}

	rec, err := h.Records.BySlug(r.Context(), typeName, chi.URLParam(r, "slug"))
	if err != nil {
		zap.S().Errorw("detail query failed", "type", typeName, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.NotFound(w, r)
		return
	}

	v := viewer(r)
	if !ancestry.Visible(t, rec, v.Elevated) {
		if rec.Status == record.StatusArchived {
			metrics.ArchiveDeniedTotal.Inc()
		}
		http.NotFound(w, r)
		return
	}

	if err := h.Records.LoadMeta(r.Context(), rec); err != nil {
		zap.S().Errorw("meta load failed", "record", rec.ID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	entries := display.Compose(h.Engine, t, rec, entity.View{
		Mode:   entity.ModeDisplay,
		Locale: h.Locale,
		Mobile: v.Mobile,
	})

	render(w, "detail", detailTmpl, struct {
		Title     string
		Canonical string
		Entries   []display.Entry
	}{
		Title:     rec.Title,
		Canonical: h.Ancestry.PathFor(r.Context(), t, rec),
		Entries:   entries,
	})
}

// -----------------------------------------------------------------------------
// Admin surface
// -----------------------------------------------------------------------------

// loadForEdit resolves the {type}/{id} pair shared by both admin handlers.
func (h *Handler) loadForEdit(w http.ResponseWriter, r *http.Request) (*entity.Type, *record.Record, bool) {
	typeName := chi.URLParam(r, "type")
	t, ok := h.Registry.Get(typeName)
	if !ok {
		http.NotFound(w, r)
		return nil, nil, false
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return nil, nil, false
	}

	rec, err := h.Records.ByID(r.Context(), id)
	if err != nil {
		zap.S().Errorw("record load failed", "record", id, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, nil, false
	}
	if rec == nil || rec.Type != typeName {
		http.NotFound(w, r)
		return nil, nil, false
	}

	if err := h.Records.LoadMeta(r.Context(), rec); err != nil {
		zap.S().Errorw("meta load failed", "record", id, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, nil, false
	}
	return t, rec, true
}

// EditForm renders the admin form, including any messages decoded from the
// `errors` parameter of a previous rejected save.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	t, rec, ok := h.loadForEdit(w, r)
	if !ok {
		return
	}

	entries := display.Compose(h.Engine, t, rec, entity.View{Mode: entity.ModeEdit})
	msgs := entity.Messages(t, entity.DecodeCodes(r.URL.Query().Get("errors")))

	render(w, "edit", editTmpl, struct {
		Title    string
		Action   string
		Status   string
		Entries  []display.Entry
		Messages []string
	}{
		Title:    rec.Title,
		Action:   r.URL.Path,
		Status:   string(rec.Status),
		Entries:  entries,
		Messages: msgs,
	})
}

// Save batches field saves, applies a status change, nudges the resolver,
// and redirects back to the form with any accumulated error codes.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	t, rec, ok := h.loadForEdit(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	values := make(map[string]string)
	for _, f := range t.Fields() {
		if _, present := r.PostForm[f.Key]; present {
			values[f.Key] = r.PostForm.Get(f.Key)
		}
	}

	if title := entity.Sanitize(r.PostForm.Get("title")); title != "" && title != rec.Title {
		slug := routing.MakeSlug(title)
		if err := h.Records.SetTitle(r.Context(), rec.ID, title, slug); err != nil {
			zap.S().Errorw("title update failed", "record", rec.ID, "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		rec.Title, rec.Slug = title, slug
		// A renamed record changes its path, so any rewrite rule pointing
		// at it must be rebuilt.
		if h.Table != nil {
			h.Table.Invalidate()
		}
	}

	codes, err := h.Engine.SaveFields(r.Context(), t, rec, values)
	if err != nil {
		zap.S().Errorw("field save failed", "record", rec.ID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if s := record.Status(r.PostForm.Get("status")); validStatus(s) && s != rec.Status {
		if err := h.Records.SetStatus(r.Context(), rec.ID, s); err != nil {
			zap.S().Errorw("status update failed", "record", rec.ID, "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		rec.Status = s
	}

	// Every successful write to a rotating series recomputes the pointer.
	if res, rotating := h.Resolvers[t.Name]; rotating {
		if err := res.OnWrite(r.Context(), rec); err != nil {
			zap.S().Errorw("current-record recompute failed", "record", rec.ID, "err", err)
		}
	}

	h.audit(r, rec)

	target := r.URL.Path
	if enc := entity.EncodeCodes(codes); enc != "" {
		target += "?errors=" + enc
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// audit logs who changed what, with role names for the trail.
func (h *Handler) audit(r *http.Request, rec *record.Record) {
	userID, ok := auth.UserID(r.Context())
	if !ok || h.DB == nil {
		zap.S().Infow("record updated", "record", rec.ID, "type", rec.Type)
		return
	}
	roles, err := acl.UserRoles(r.Context(), h.DB, userID)
	if err != nil {
		roles = nil
	}
	zap.S().Infow("record updated",
		"record", rec.ID, "type", rec.Type, "user", userID, "roles", roles)
}

func validStatus(s record.Status) bool {
	switch s {
	case record.StatusDraft, record.StatusPublished, record.StatusArchived:
		return true
	}
	return false
}
