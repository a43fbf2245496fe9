package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ClientAddress returns middleware that, when trustProxy is set, replaces
// RemoteAddr with the client address reported by the fronting proxy
// (True-Client-IP, X-Real-IP or the first X-Forwarded-For entry).
// Mount it outside RequestLogger and the rate limiter so both see the
// rewritten address.
func ClientAddress(trustProxy bool) func(http.Handler) http.Handler {
	if !trustProxy {
		return func(next http.Handler) http.Handler { return next }
	}
	return chimw.RealIP
}
