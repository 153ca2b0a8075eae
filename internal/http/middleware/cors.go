package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowedHeaders = "Content-Type, Authorization, X-Session-ID"
	corsExposedHeaders = "X-Session-ID"
	corsMaxAge         = "86400"
)

// CORS stamps allowlist CORS headers on every response. A listed Origin is
// echoed back; any other origin gets the first allowed origin, so browsers
// on unlisted sites are refused. "*" in allowedOrigins echoes every Origin.
// Every OPTIONS request is answered with 204 without reaching next.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAny := false
	allow := map[string]struct{}{}
	first := ""
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAny = true
			continue
		}
		if first == "" {
			first = origin
		}
		allow[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			allowed := first
			if origin != "" && (allowAny || isAllowedOrigin(allow, origin)) {
				allowed = origin
			}

			h := w.Header()
			if allowed != "" {
				h.Set("Access-Control-Allow-Origin", allowed)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			h.Set("Access-Control-Expose-Headers", corsExposedHeaders)
			h.Set("Access-Control-Max-Age", corsMaxAge)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isAllowedOrigin(allow map[string]struct{}, origin string) bool {
	_, ok := allow[origin]
	return ok
}
