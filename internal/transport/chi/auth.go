package chi

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/takenote/internal/logger"
)

// AnonymousUser owns every request when authentication is disabled.
const AnonymousUser = "anonymous"

type userKey struct{}

// exemptPaths are routes that bypass authentication (service info, health, metrics).
var exemptPaths = map[string]struct{}{
	"/":        {},
	"/health":  {},
	"/metrics": {},
}

// ContextWithUser stores the authenticated user id in the context and tags
// the request logger with it.
func ContextWithUser(ctx context.Context, userID string) context.Context {
	ctx = logpkg.With(ctx, zap.String("user_id", userID))
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFromContext returns the authenticated user id, AnonymousUser if none.
func UserFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userKey{}).(string); ok && id != "" {
		return id
	}
	return AnonymousUser
}

// BearerAuthMiddleware returns a middleware that resolves Bearer tokens to
// user ids. If tokens is empty, authentication is disabled and every request
// runs as AnonymousUser.
func BearerAuthMiddleware(tokens map[string]string) func(http.Handler) http.Handler {
	users := make(map[string]string, len(tokens))
	for token, userID := range tokens {
		if token != "" && userID != "" {
			users[token] = userID
		}
	}

	return func(next http.Handler) http.Handler {
		if len(users) == 0 {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), AnonymousUser)))
			})
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					codeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			userID, ok := users[auth[len(bearerPrefix):]]
			if !ok {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), userID)))
		})
	}
}
