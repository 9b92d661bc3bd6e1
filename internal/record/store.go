// internal/record/store.go
//
// Query helpers for the `record` and `record_meta` tables.
//
// Context
// -------
// The Store is the record-storage collaborator every other package talks
// to: the entity engine persists field values through it, the
// latest-record resolver runs its top-of-series query against it, and the
// ancestry resolver walks parent chains with ByID.  All helpers accept a
// context so lookups respect request deadlines.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package record

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Store wraps the shared sqlx pool.
type Store struct {
	db *sqlx.DB
}

// NewStore returns a Store bound to db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

const recordCols = `id, type, title, slug, status, ordering, parent_id, created_at, updated_at`

// ByID fetches a single record.  Returns (nil, nil) when the id is unknown,
// because a dangling reference is a valid "no record" state for callers.
func (s *Store) ByID(ctx context.Context, id uint64) (*Record, error) {
	const q = `SELECT ` + recordCols + ` FROM record WHERE id = ? LIMIT 1`

	var rec Record
	if err := s.db.GetContext(ctx, &rec, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// BySlug fetches a record of one type by its slug.
func (s *Store) BySlug(ctx context.Context, typeName, slug string) (*Record, error) {
	const q = `SELECT ` + recordCols + ` FROM record WHERE type = ? AND slug = ? LIMIT 1`

	var rec Record
	if err := s.db.GetContext(ctx, &rec, q, typeName, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// ByType lists records of one type, highest ordering first.  Archived
// records are included only when elevated is true.
func (s *Store) ByType(ctx context.Context, typeName string, elevated bool) ([]Record, error) {
	q := `SELECT ` + recordCols + ` FROM record
	       WHERE type = ? AND status IN ('published', 'archived')
	       ORDER BY ordering DESC, id ASC`
	if !elevated {
		q = `SELECT ` + recordCols + ` FROM record
		      WHERE type = ? AND status = 'published'
		      ORDER BY ordering DESC, id ASC`
	}

	var rows []Record
	if err := s.db.SelectContext(ctx, &rows, q, typeName); err != nil {
		return nil, err
	}
	return rows, nil
}

// TopOfSeries returns the published record of one type with the maximum
// ordering attribute.  Ties break deterministically by lowest id.  Returns
// (nil, nil) when no published record exists.
func (s *Store) TopOfSeries(ctx context.Context, typeName string) (*Record, error) {
	const q = `SELECT ` + recordCols + ` FROM record
	            WHERE type = ? AND status = 'published'
	            ORDER BY ordering DESC, id ASC
	            LIMIT 1`

	var rec Record
	if err := s.db.GetContext(ctx, &rec, q, typeName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// LoadMeta populates rec.Meta from the record_meta table.
func (s *Store) LoadMeta(ctx context.Context, rec *Record) error {
	const q = `SELECT meta_key, meta_value FROM record_meta WHERE record_id = ?`

	rows := make([]struct {
		Key   string `db:"meta_key"`
		Value string `db:"meta_value"`
	}, 0, 8)

	if err := s.db.SelectContext(ctx, &rows, q, rec.ID); err != nil {
		return err
	}

	rec.Meta = make(map[string]string, len(rows))
	for _, r := range rows {
		rec.Meta[r.Key] = r.Value
	}
	return nil
}

// SetMeta upserts one metadata value.
func (s *Store) SetMeta(ctx context.Context, recordID uint64, key, value string) error {
	const q = `INSERT INTO record_meta (record_id, meta_key, meta_value)
	           VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE meta_value = VALUES(meta_value)`
	_, err := s.db.ExecContext(ctx, q, recordID, key, value)
	return err
}

// DeleteMeta removes one metadata value.  Deleting an absent key is a
// no-op, not an error.
func (s *Store) DeleteMeta(ctx context.Context, recordID uint64, key string) error {
	const q = `DELETE FROM record_meta WHERE record_id = ? AND meta_key = ?`
	_, err := s.db.ExecContext(ctx, q, recordID, key)
	return err
}

// SetOrdering writes the dedicated ordering slot.
func (s *Store) SetOrdering(ctx context.Context, recordID uint64, ordering int) error {
	const q = `UPDATE record SET ordering = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q, ordering, recordID)
	return err
}

// SetTitle updates the title together with its derived slug.
func (s *Store) SetTitle(ctx context.Context, recordID uint64, title, slug string) error {
	const q = `UPDATE record SET title = ?, slug = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q, title, slug, recordID)
	return err
}

// SetStatus updates the publication state.
func (s *Store) SetStatus(ctx context.Context, recordID uint64, status Status) error {
	const q = `UPDATE record SET status = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q, status, recordID)
	return err
}
