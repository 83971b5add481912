package handlers

import (
	"context"
	"net/http"

	"github.com/userpanel/adminserver/internal/auth"
)

// RequireUser builds middleware that resolves the session cookie to a
// live user and injects it into the request context. Any resolution
// failure yields a generic 401; the specific cause is logged by the
// resolver.
func RequireUser(resolver *auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolver.Resolve(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), contextUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireGroup builds middleware that gates the request on membership
// in the named group. It must run after RequireUser. Denial happens
// before the wrapped handler touches storage.
func RequireGroup(group string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := currentUser(r.Context())
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if !auth.Authorize(user, group) {
				writeError(w, http.StatusForbidden, "permission denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
