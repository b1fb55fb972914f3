package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dariomolina/cintelink-challenge/internal/auth"
	"github.com/dariomolina/cintelink-challenge/internal/store"
	"github.com/dariomolina/cintelink-challenge/pkg/logger"
)

type contextKey struct{ name string }

var userIDKey = contextKey{"user_id"}

// bearerAuth verifies the Authorization: Bearer token and binds the user
// id into the request context. Verification failures get a bare 401.
func bearerAuth(verifier auth.Verifier, st store.Store, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if _, err := st.GetUser(r.Context(), userID); err != nil {
				log.LogAttrs(r.Context(), slog.LevelDebug, "token user not in directory",
					logger.UserID(userID),
				)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userIDFromContext returns the authenticated user id bound by bearerAuth.
func userIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}
