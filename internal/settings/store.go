// internal/settings/store.go
//
// Flat key-value settings store.
//
// Context
// -------
// Per-type settings (parent-page id, latest-record pointer, archive toggle)
// live in the `setting` table as plain strings.  The table is tiny, so the
// store keeps a write-through in-memory copy loaded once at boot; reads are
// served from memory, and writes update both sides.  Read-after-write is
// therefore consistent within the process.
//
//	CREATE TABLE setting (
//	    `key`  VARCHAR(64)  PRIMARY KEY,
//	    value  VARCHAR(256) NOT NULL
//	);
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package settings

import (
	"context"
	"strconv"
	"sync"

	"github.com/jmoiron/sqlx"
)

// Store caches the `setting` table.  Construct with NewStore; the zero
// value is unusable.
type Store struct {
	db *sqlx.DB

	mu   sync.RWMutex
	data map[string]string
}

// NewStore returns a Store bound to db.  Call Load before first use.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, data: map[string]string{}}
}

// Load refreshes the in-memory copy from the table.
func (s *Store) Load(ctx context.Context) error {
	const q = "SELECT `key`, value FROM setting"

	rows := make([]struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}, 0, 16)

	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return err
	}

	fresh := make(map[string]string, len(rows))
	for _, r := range rows {
		fresh[r.Key] = r.Value
	}

	s.mu.Lock()
	s.data = fresh
	s.mu.Unlock()
	return nil
}

// Get returns the value for key.  The boolean is false when unset.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// GetUint is a convenience for settings holding record ids.  Unset or
// unparsable values return (0, false).
func (s *Store) GetUint(key string) (uint64, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Set upserts one setting and updates the in-memory copy.
func (s *Store) Set(ctx context.Context, key, value string) error {
	const q = "INSERT INTO setting (`key`, value) VALUES (?, ?)" +
		" ON DUPLICATE KEY UPDATE value = VALUES(value)"

	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return err
	}

	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}

// Delete removes one setting.  Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	const q = "DELETE FROM setting WHERE `key` = ?"

	if _, err := s.db.ExecContext(ctx, q, key); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}
