package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/userpanel/adminserver/internal/logging"
	"github.com/userpanel/adminserver/types"
)

// ErrUnauthenticated is the only error Resolve returns. Internal causes
// (missing cookie, bad scheme, decode failure, unknown subject) are
// logged but never surfaced to the client.
var ErrUnauthenticated = errors.New("unauthenticated")

// UserSource looks up a live user record with group memberships
// eager-loaded.
type UserSource interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
}

// Resolver derives the current user from a request's session cookie.
// It fails closed: any error in any step yields ErrUnauthenticated.
type Resolver struct {
	codec *Codec
	users UserSource
	log   logging.Logger
}

func NewResolver(codec *Codec, users UserSource, log logging.Logger) *Resolver {
	return &Resolver{codec: codec, users: users, log: log}
}

// Resolve reads the session cookie, validates the token, and loads the
// subject's live user record. Group membership is always the value at
// read time; a revoked membership takes effect on the next request even
// while the token remains valid.
func (rs *Resolver) Resolve(r *http.Request) (types.User, error) {
	ctx := r.Context()

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		rs.log.Warn(ctx, "session cookie missing")
		return types.User{}, ErrUnauthenticated
	}

	scheme, tokenString, found := strings.Cut(cookie.Value, " ")
	if !found || !strings.EqualFold(scheme, BearerScheme) {
		rs.log.Warn(ctx, "invalid auth scheme in session cookie", "scheme", scheme)
		return types.User{}, ErrUnauthenticated
	}

	claims, err := rs.codec.Decode(tokenString)
	if err != nil {
		rs.log.Warn(ctx, "session token rejected", "cause", err)
		return types.User{}, ErrUnauthenticated
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		rs.log.Warn(ctx, "session token has no subject")
		return types.User{}, ErrUnauthenticated
	}

	user, err := rs.users.GetByUsername(ctx, subject)
	if err != nil {
		rs.log.Warn(ctx, "session subject not found", "subject", subject)
		return types.User{}, ErrUnauthenticated
	}

	return user, nil
}
