package auth

import (
	"context"
	"errors"

	"github.com/userpanel/adminserver/internal/logging"
	"github.com/userpanel/adminserver/types"
)

// ErrInvalidCredentials covers both an unknown identifier and a wrong
// password, so login responses never reveal whether an account exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserDirectory looks up accounts for credential verification.
type UserDirectory interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
}

// Issuer verifies credentials and mints session cookie values.
type Issuer struct {
	codec     *Codec
	users     UserDirectory
	emailAuth bool
	log       logging.Logger
}

// NewIssuer constructs an Issuer. When emailAuth is true the login
// identifier is the account email instead of the username.
func NewIssuer(codec *Codec, users UserDirectory, emailAuth bool, log logging.Logger) *Issuer {
	return &Issuer{codec: codec, users: users, emailAuth: emailAuth, log: log}
}

// Login verifies the credential and returns the authenticated user plus
// the session cookie value ("Bearer " + token). Both lookup failure and
// password mismatch return ErrInvalidCredentials.
func (i *Issuer) Login(ctx context.Context, identifier, secret string) (types.User, string, error) {
	var user types.User
	var err error
	if i.emailAuth {
		user, err = i.users.GetByEmail(ctx, identifier)
	} else {
		user, err = i.users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		i.log.Warn(ctx, "authentication failed: unknown identifier", "identifier", identifier)
		return types.User{}, "", ErrInvalidCredentials
	}

	if !VerifyPassword(secret, user.PasswordHash) {
		i.log.Warn(ctx, "authentication failed: wrong password", "identifier", identifier)
		return types.User{}, "", ErrInvalidCredentials
	}

	token, err := i.codec.Encode(i.codec.NewClaims(user.Username))
	if err != nil {
		return types.User{}, "", err
	}

	i.log.Info(ctx, "session issued", "username", user.Username)
	return user, BearerScheme + " " + token, nil
}
