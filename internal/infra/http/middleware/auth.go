package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/xavierca1/artisan-crm/internal/event"
	"github.com/xavierca1/artisan-crm/internal/infra/auth"
)

type contextKey string

const actorKey contextKey = "actor"

// BearerAuth guards a route group: it verifies the bearer token and stores
// the decoded actor in the request context.
func BearerAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				unauthorized(w, "Not authenticated")
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				unauthorized(w, "Invalid or expired token")
				return
			}

			actor := event.Actor{
				ID:       claims.ID,
				Username: claims.Username,
				Name:     claims.Name,
			}
			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFrom returns the authenticated actor stored by BearerAuth. The zero
// Actor comes back for unauthenticated contexts (tests, internal calls).
func ActorFrom(ctx context.Context) event.Actor {
	actor, _ := ctx.Value(actorKey).(event.Actor)
	return actor
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
