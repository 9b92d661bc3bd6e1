//
//  internal/requestinfo/middleware.go
//
//  Enrich middleware: builds one *Viewer per request and stores it in the
//  request context.  The elevated-access flag is resolved through the acl
//  predicate on every request, never cached, so role changes take effect
//  immediately.
//

package requestinfo

import (
	"database/sql"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vgsr/entity/internal/acl"
	"github.com/vgsr/entity/internal/auth"
)

// Enrich returns a middleware that attaches a populated *Viewer to the
// request context.  db backs the per-request elevated predicate; a nil db
// leaves Elevated false (useful in tests).
func Enrich(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua := parseUA(r.UserAgent())

			v := &Viewer{
				UA:        ua,
				Geo:       lookupGeo(clientIP(r.RemoteAddr)),
				Mobile:    ua.Device == "Mobile",
				URL:       r.URL,
				Timestamp: time.Now(),
			}

			if db != nil {
				if userID, ok := auth.UserID(r.Context()); ok {
					elevated, err := acl.Elevated(r.Context(), db, userID)
					if err != nil {
						zap.S().Warnw("elevated predicate failed",
							"user", userID, "err", err)
					}
					v.Elevated = elevated
				}
			}

			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), v)))
		})
	}
}
