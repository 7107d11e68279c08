package middleware

import (
	"context"
	"net/http"
)

// ModeratorKey is the context key marking a request as moderator-initiated.
const ModeratorKey contextKey = "moderator"

// ModeratorConfig holds configuration for the moderator middleware.
type ModeratorConfig struct {
	// Key is the shared secret; empty disables moderator access entirely.
	Key string
}

// NewModeratorMiddleware tags requests carrying the moderator key. It never
// rejects: handlers that require moderator rights check the flag themselves,
// since most marketplace endpoints are open to regular players.
func NewModeratorMiddleware(cfg ModeratorConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Key != "" && r.Header.Get("X-Moderator-Key") == cfg.Key {
				ctx := context.WithValue(r.Context(), ModeratorKey, true)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsModerator reports whether the request was tagged as moderator-initiated.
func IsModerator(ctx context.Context) bool {
	flag, ok := ctx.Value(ModeratorKey).(bool)
	return ok && flag
}
