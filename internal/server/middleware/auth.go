package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fieldscript/fieldscript/internal/apperr"
	"github.com/fieldscript/fieldscript/internal/model"
	"github.com/fieldscript/fieldscript/internal/store"
)

type contextKeyAuth string

// AuthContextKey is the context key for the authenticated caller identity.
const AuthContextKey contextKeyAuth = "auth_context"

// APIKeyHeader is the dedicated credential header, checked after the
// Authorization Bearer form.
const APIKeyHeader = "X-API-Key"

// ExtractAPIKey pulls the raw API key from the request: Authorization
// "Bearer <key>" first, then the dedicated header. Missing or
// whitespace-only values count as absent.
func ExtractAPIKey(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		if key := strings.TrimSpace(auth[7:]); key != "" {
			return key
		}
	}
	return strings.TrimSpace(r.Header.Get(APIKeyHeader))
}

// Authenticate returns a middleware that resolves the caller's API key
// against the store and enforces that it belongs to the {projectID} route
// parameter. Missing or unverifiable credentials yield 401 with a Bearer
// challenge; a valid key for a different project yields 403 and never leaks
// the target project's data. On success the AuthContext is attached to the
// request context.
func Authenticate(keys store.APIKeyStore) func(http.Handler) http.Handler {
	return authMiddleware(func(r *http.Request, rawKey, projectID string) (*model.APIKey, error) {
		return keys.Verify(r.Context(), rawKey)
	})
}

// AuthenticateAllowRevoked is the revoke-endpoint variant: a revoked key
// still authenticates its own owner so re-revocation stays idempotent. It is
// a deliberate, narrow exception to "revoked keys are invisible".
func AuthenticateAllowRevoked(keys store.APIKeyStore) func(http.Handler) http.Handler {
	return authMiddleware(func(r *http.Request, rawKey, projectID string) (*model.APIKey, error) {
		return keys.VerifyAllowRevoked(r.Context(), rawKey, projectID)
	})
}

func authMiddleware(resolve func(r *http.Request, rawKey, projectID string) (*model.APIKey, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			projectID := chi.URLParam(r, "projectID")

			rawKey := ExtractAPIKey(r)
			if rawKey == "" {
				writeError(w, r, apperr.Unauthorized())
				return
			}

			rec, err := resolve(r, rawKey, projectID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					writeError(w, r, apperr.Unauthorized())
				} else {
					writeError(w, r, apperr.Internal())
				}
				return
			}
			if rec.ProjectID != projectID {
				writeError(w, r, apperr.Forbidden())
				return
			}

			if info := GetRequestInfo(r.Context()); info != nil {
				info.ProjectID = rec.ProjectID
			}
			ctx := context.WithValue(r.Context(), AuthContextKey, &model.AuthContext{
				ProjectID:      rec.ProjectID,
				APIKeyID:       rec.ID,
				KeyFingerprint: rec.KeyFingerprint,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAuthContext extracts the authenticated identity from the context.
// Returns nil for unauthenticated requests.
func GetAuthContext(ctx context.Context) *model.AuthContext {
	ac, _ := ctx.Value(AuthContextKey).(*model.AuthContext)
	return ac
}
