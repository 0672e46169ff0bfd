package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fseda/Vidly/internal/apperr"
	"github.com/fseda/Vidly/internal/auth"
	"github.com/fseda/Vidly/internal/httpx"
)

// Verifier turns a raw token into the caller it was issued for.
type Verifier interface {
	Verify(token string) (auth.Identity, error)
}

// RequireAuth is middleware that validates the x-auth-token header and
// injects the caller's identity into the request context.
func RequireAuth(tokens Verifier, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(auth.TokenHeader)
			if raw == "" {
				httpx.Error(w, r, log, apperr.Unauthenticated("Access denied. No token provided."))
				return
			}

			id, err := tokens.Verify(raw)
			if err != nil {
				httpx.Error(w, r, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth attaches the caller when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(tokens Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := r.Header.Get(auth.TokenHeader); raw != "" {
				if id, err := tokens.Verify(raw); err == nil {
					r = r.WithContext(auth.WithIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects callers without the admin flag. It must run after
// RequireAuth.
func RequireAdmin(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFrom(r.Context())
			if !ok {
				httpx.Error(w, r, log, apperr.Unauthenticated("Access denied. No token provided."))
				return
			}
			if !id.IsAdmin {
				httpx.Error(w, r, log, apperr.Forbidden("Access denied."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ValidObjectID answers 404 when the named URL parameter is not a
// well-formed object id, so handlers never see a malformed id.
func ValidObjectID(param string, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !primitive.IsValidObjectID(chi.URLParam(r, param)) {
				httpx.Error(w, r, log, apperr.NotFound("Invalid ID."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
