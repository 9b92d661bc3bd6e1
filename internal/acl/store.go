// internal/acl/store.go
//
// Small query helpers for viewer access control.
//
// Context
// -------
// The access model lives in two tables:
//
//	role        (id PK, name, elevated, enabled)
//	user_role   (user_id, role_id)
//
// The entity surface needs fast answers to two questions:
//  1. Which *role names* does user X have?                → `UserRoles()`
//  2. Does user X hold any elevated, enabled role?        → `Elevated()`
//
// `Elevated` is the authorization predicate the archive gate consumes: it
// is evaluated per request and never cached, so a role revocation takes
// effect on the next request.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package acl

import (
	"context"
	"database/sql"
	"errors"
)

// UserRoles returns the role *names* bound to userID.  Disabled roles are
// filtered out.
func UserRoles(ctx context.Context, db *sql.DB, userID int64) ([]string, error) {
	const q = `SELECT r.name
                 FROM user_role ur
                 JOIN role r ON r.id = ur.role_id
                WHERE ur.user_id = ? AND r.enabled = TRUE`

	rows, err := db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]string, 0, 4)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}

// Elevated reports whether userID holds at least one enabled role with the
// elevated flag.  userID 0 (anonymous) short-circuits to false.
func Elevated(ctx context.Context, db *sql.DB, userID int64) (bool, error) {
	if userID == 0 {
		return false, nil
	}

	const q = `SELECT 1
                 FROM user_role ur
                 JOIN role r ON r.id = ur.role_id
                WHERE ur.user_id = ?
                  AND r.enabled  = TRUE
                  AND r.elevated = TRUE
                LIMIT 1` // early exit once we find a hit

	var dummy int
	err := db.QueryRowContext(ctx, q, userID).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
