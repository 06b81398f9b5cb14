package authclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/eduard-w/songsMS/internal/apperr"
)

type ctxUserIDKey struct{}

// RequireToken resolves the Authorization header to a user id and rejects
// the request with 401 when that is not possible.
func RequireToken(resolver Resolver, logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("Authorization")
			if token == "" {
				apperr.Write(w, apperr.Unauthenticated("missing Authorization header"), false)
				return
			}

			userID, err := resolver.ResolveIdentityID(r.Context(), token)
			if err != nil {
				if errors.Is(err, ErrUpstreamUnavailable) {
					logger.Error("auth service unreachable, rejecting request", "path", r.URL.Path, "err", err)
				} else {
					logger.Error("token resolution failed", "path", r.URL.Path, "err", err)
				}
				apperr.Write(w, apperr.Unauthenticated("token could not be verified"), false)
				return
			}
			if userID == "" {
				apperr.Write(w, apperr.Unauthenticated("invalid token"), false)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserIDKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxUserIDKey{}).(string)
	return s, ok && s != ""
}

// WithUserID returns ctx carrying userID, as RequireToken would.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserIDKey{}, userID)
}
