package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/salescoach-api/internal/session"
)

// SessionHeader is read from requests and echoed on responses.
const SessionHeader = "X-Session-ID"

// SessionID resolves the caller's session from the X-Session-ID header,
// minting a new sess_ identifier when absent, and stores it in the request
// context. The identifier is echoed on the response before next runs.
func SessionID(now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(SessionHeader))
			if id == "" {
				id = session.NewID(now())
			}
			w.Header().Set(SessionHeader, id)
			next.ServeHTTP(w, r.WithContext(session.WithID(r.Context(), id)))
		})
	}
}
