package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/ports"
)

// Headers set by the sign-in proxy in front of the service.
const (
	HeaderUserID    = "X-Auth-User-Id"
	HeaderUserName  = "X-Auth-User-Name"
	HeaderUserEmail = "X-Auth-User-Email"
)

// SignInRoute is served by the identity provider, not by this service.
const SignInRoute = "/sign-in"

// Identity resolves the signed-in user from the proxy headers and keeps the
// users table in step. Pages without a user go to SignInRoute, API calls get
// a 401.
func Identity(users ports.UserRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(HeaderUserID))
			if id == "" {
				if strings.HasPrefix(r.URL.Path, "/api/") {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				Redirect(w, r, SignInRoute)
				return
			}

			user := &domain.User{
				ID:    id,
				Name:  strings.TrimSpace(r.Header.Get(HeaderUserName)),
				Email: strings.TrimSpace(r.Header.Get(HeaderUserEmail)),
			}
			if user.Name == "" {
				user.Name = "Guest"
			}
			if users != nil {
				if err := users.Upsert(r.Context(), user); err != nil {
					logger.Error("failed to upsert user", "user_id", id, "error", err)
					http.Error(w, "failed to load user", http.StatusInternalServerError)
					return
				}
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser returns the user stored by Identity, or nil.
func CurrentUser(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(userKey).(*domain.User); ok {
		return u
	}
	return nil
}
