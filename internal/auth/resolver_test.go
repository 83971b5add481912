package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/userpanel/adminserver/internal/logging"
	"github.com/userpanel/adminserver/internal/store"
	"github.com/userpanel/adminserver/types"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeUserSource serves a fixed set of users keyed by username.
type fakeUserSource struct {
	users map[string]types.User
}

func (f *fakeUserSource) GetByUsername(_ context.Context, username string) (types.User, error) {
	user, ok := f.users[username]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserSource) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func requestWithCookie(value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	if value != "" {
		r.AddCookie(&http.Cookie{Name: CookieName, Value: value})
	}
	return r
}

func TestResolver_Success(t *testing.T) {
	t.Parallel()

	codec := NewCodec("secret", time.Hour)
	alice := types.User{
		ID:       1,
		Username: "alice",
		Groups:   []types.Group{{ID: 1, Name: "administrators"}},
	}
	resolver := NewResolver(codec, &fakeUserSource{users: map[string]types.User{"alice": alice}}, testLogger())

	tok, err := codec.Encode(codec.NewClaims("alice"))
	require.NoError(t, err)

	user, err := resolver.Resolve(requestWithCookie("Bearer " + tok))
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.True(t, user.InGroup("administrators"), "groups must be eager-loaded")
}

func TestResolver_SchemeCaseInsensitive(t *testing.T) {
	t.Parallel()

	codec := NewCodec("secret", time.Hour)
	resolver := NewResolver(codec, &fakeUserSource{users: map[string]types.User{"alice": {Username: "alice"}}}, testLogger())

	tok, err := codec.Encode(codec.NewClaims("alice"))
	require.NoError(t, err)

	_, err = resolver.Resolve(requestWithCookie("bearer " + tok))
	require.NoError(t, err)
}

func TestResolver_FailClosed(t *testing.T) {
	t.Parallel()

	codec := NewCodec("secret", time.Hour)
	source := &fakeUserSource{users: map[string]types.User{"alice": {Username: "alice"}}}
	resolver := NewResolver(codec, source, testLogger())

	validToken, err := codec.Encode(codec.NewClaims("alice"))
	require.NoError(t, err)
	ghostToken, err := codec.Encode(codec.NewClaims("ghost"))
	require.NoError(t, err)
	expiredToken, err := NewCodec("secret", -time.Minute).Encode(NewCodec("secret", -time.Minute).NewClaims("alice"))
	require.NoError(t, err)
	foreignToken, err := NewCodec("other-key", time.Hour).Encode(NewCodec("other-key", time.Hour).NewClaims("alice"))
	require.NoError(t, err)
	emptySubject, err := codec.Encode(codec.NewClaims(""))
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie string
	}{
		{"no cookie", ""},
		{"no space in value", validToken},
		{"wrong scheme", "Basic " + validToken},
		{"garbage token", "Bearer not.a.token"},
		{"expired token", "Bearer " + expiredToken},
		{"foreign signature", "Bearer " + foreignToken},
		{"empty subject", "Bearer " + emptySubject},
		{"unknown subject", "Bearer " + ghostToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(requestWithCookie(tt.cookie))
			require.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}
