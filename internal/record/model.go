// internal/record/model.go
//
// `record` and `record_meta` table row models.
//
// Context
// -------
// One Record row is a concrete entity instance: a board term, a chapter, or
// a house.  The dedicated `ordering` column ranks records within their
// type's series (term start year, founding year); everything else lives in
// the `record_meta` key-value table and is loaded into the Meta map.
//
// Schema reference (2026-08)
//
//	CREATE TABLE record (
//	    id          INT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
//	    type        VARCHAR(32)   NOT NULL,
//	    title       VARCHAR(256)  NOT NULL,
//	    slug        VARCHAR(128)  NOT NULL,
//	    status      VARCHAR(10)   NOT NULL DEFAULT 'draft',
//	    ordering    INT           NOT NULL DEFAULT 0,
//	    parent_id   INT UNSIGNED  NULL,
//	    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	    updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	    UNIQUE KEY type_slug (type, slug)
//	);
//
//	CREATE TABLE record_meta (
//	    record_id   INT UNSIGNED NOT NULL,
//	    meta_key    VARCHAR(64)  NOT NULL,
//	    meta_value  TEXT         NOT NULL,
//	    PRIMARY KEY (record_id, meta_key)
//	);
//
// Notes
// -----
// • `ParentID` is nullable; callers must nil-check before use.
// • Meta is populated by Store.LoadMeta, not by sqlx scans.
package record

import "time"

// Status is the publication state of a record.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Record mirrors one row in the `record` table.
type Record struct {
	ID        uint64    `db:"id"`
	Type      string    `db:"type"`
	Title     string    `db:"title"`
	Slug      string    `db:"slug"`
	Status    Status    `db:"status"`
	Ordering  int       `db:"ordering"`
	ParentID  *uint64   `db:"parent_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// Meta holds the raw metadata values keyed by storage name.  Loaded
	// separately via Store.LoadMeta.
	Meta map[string]string `db:"-"`
}

// Published reports whether the record is publicly visible without any
// archive gating.
func (r *Record) Published() bool { return r.Status == StatusPublished }
