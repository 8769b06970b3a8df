package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/eugeneokaka/journal/internal/auth"
)

// DefaultSessionCookie is the cookie the identity provider's frontend SDK
// stores the session token in.
const DefaultSessionCookie = "__session"

// TokenVerifier validates a session token and returns the caller it names.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger     *slog.Logger
	Verifier   TokenVerifier
	CookieName string
}

// Session verifies the session token when one is presented and stores the
// caller in the request context. Requests without a valid token continue
// anonymously; RequireSession turns them away where a caller is mandatory.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractSessionToken(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := cfg.Verifier.Verify(token)
			if err != nil {
				cfg.Logger.Warn("session rejected",
					slog.String("reason", err.Error()),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			setLogUser(r.Context(), auth.Fingerprint(id.ExternalID))
			ctx := auth.ContextWithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests that carry no verified caller.
// Must be applied after Session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.IdentityFromContext(r.Context()) == nil {
			writeAuthError(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractSessionToken reads "Authorization: Bearer <token>", falling back to
// the session cookie.
func extractSessionToken(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}

	return ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
}
