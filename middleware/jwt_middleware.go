package middleware

import (
	"context"
	"net/http"
	"strings"

	"citymap-server/utils/errors"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

// TokenParser validates a bearer token and returns the session id it carries.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// JWTMiddleware requires a session token, taken from the Authorization header
// or, for WebSocket upgrades that cannot set headers, the "token" query
// parameter.
func JWTMiddleware(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				WriteError(w, errors.ErrUnauthorized)
				return
			}
			sessionID, err := parser.ParseToken(tokenString)
			if err != nil {
				WriteError(w, errors.ErrUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWTMiddleware attaches the session id when a valid token is present
// and lets the request through either way.
func OptionalJWTMiddleware(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString := bearerToken(r); tokenString != "" {
				if sessionID, err := parser.ParseToken(tokenString); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), sessionIDKey, sessionID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionIDFromContext returns the session id set by the JWT middleware.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
