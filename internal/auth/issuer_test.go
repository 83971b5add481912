package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/userpanel/adminserver/types"
)

func newTestDirectory(t *testing.T) *fakeUserSource {
	t.Helper()
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	return &fakeUserSource{users: map[string]types.User{
		"alice": {
			ID:           1,
			Username:     "alice",
			Email:        "alice@example.com",
			PasswordHash: hash,
		},
	}}
}

func TestIssuer_Login(t *testing.T) {
	t.Parallel()

	codec := NewCodec("secret", 30*time.Minute)
	issuer := NewIssuer(codec, newTestDirectory(t), false, testLogger())

	user, cookieValue, err := issuer.Login(context.Background(), "alice", "correct horse")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.True(t, strings.HasPrefix(cookieValue, "Bearer "), "cookie value must carry the bearer scheme")

	claims, err := codec.Decode(strings.TrimPrefix(cookieValue, "Bearer "))
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
}

func TestIssuer_NoAccountEnumeration(t *testing.T) {
	t.Parallel()

	codec := NewCodec("secret", time.Hour)
	issuer := NewIssuer(codec, newTestDirectory(t), false, testLogger())

	_, _, unknownErr := issuer.Login(context.Background(), "nobody", "whatever")
	_, _, wrongPassErr := issuer.Login(context.Background(), "alice", "wrong")

	require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	require.ErrorIs(t, wrongPassErr, ErrInvalidCredentials)
	require.Equal(t, unknownErr, wrongPassErr, "unknown user and wrong password must be indistinguishable")
}

func TestIssuer_EmailAuth(t *testing.T) {
	t.Parallel()

	codec := NewCodec("secret", time.Hour)
	directory := newTestDirectory(t)

	byEmail := NewIssuer(codec, directory, true, testLogger())
	user, _, err := byEmail.Login(context.Background(), "alice@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username, "subject is always the username, even with email auth")

	_, _, err = byEmail.Login(context.Background(), "alice", "correct horse")
	require.ErrorIs(t, err, ErrInvalidCredentials, "username is not a valid identifier in email mode")
}
