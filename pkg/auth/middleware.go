package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Middleware attaches verified claims to the request context.
type Middleware struct {
	authService AuthService
	required    bool
	logger      *zap.Logger
}

// NewMiddleware creates auth middleware. When required is false, requests
// without an Authorization header pass through anonymously; a header that is
// present must still be valid.
func NewMiddleware(authService AuthService, required bool, logger *zap.Logger) *Middleware {
	return &Middleware{
		authService: authService,
		required:    required,
		logger:      logger.Named("auth"),
	}
}

// Authenticate wraps next with token verification.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, token, err := m.authService.ValidateRequest(r)
		switch {
		case errors.Is(err, ErrMissingAuthorization) && !m.required:
			next.ServeHTTP(w, r)
			return
		case err != nil:
			m.unauthorized(w, "Authentication required")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims, token)))
	})
}

// unauthorized returns a 401 response with the service's JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  "unauthorized",
	})
}
