package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/studentbot/backend/internal/auth"
	"github.com/studentbot/backend/pkg/utils"
)

type contextKey string

const identityKey contextKey = "identity"

// LoginPath is where unauthenticated callers are pointed.
const LoginPath = "/login"

// RequireSession rejects requests without a parseable access token and stores
// the caller identity on the request context. The 401 body carries the login
// entry point so the frontend can redirect.
func RequireSession(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header {
				respondUnauthenticated(w)
				return
			}

			identity, err := auth.ParseToken(token, jwtSecret)
			if err != nil {
				respondUnauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the authenticated identity stored by RequireSession.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}

func respondUnauthenticated(w http.ResponseWriter) {
	utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{
		"error":    "authentication required",
		"redirect": LoginPath,
	})
}
