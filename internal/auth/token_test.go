package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewCodec("super-secret", 30*time.Minute)

	claims := codec.NewClaims("alice")
	tok, err := codec.Encode(claims)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	got, err := codec.Decode(tok)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got.Subject != "alice" {
		t.Fatalf("subject mismatch: got %q want %q", got.Subject, "alice")
	}
	if !got.IssuedAt.Equal(claims.IssuedAt.Time) {
		t.Fatalf("issued_at mismatch: got %v want %v", got.IssuedAt, claims.IssuedAt)
	}
	if !got.ExpiresAt.Equal(claims.ExpiresAt.Time) {
		t.Fatalf("expires_at mismatch: got %v want %v", got.ExpiresAt, claims.ExpiresAt)
	}
	if got.ID != claims.ID {
		t.Fatalf("token id mismatch: got %q want %q", got.ID, claims.ID)
	}
}

func TestCodec_NewClaimsValidityWindow(t *testing.T) {
	t.Parallel()

	ttl := 30 * time.Minute
	codec := NewCodec("k", ttl)

	claims := codec.NewClaims("bob")
	if claims.ID == "" {
		t.Fatalf("expected a token id")
	}
	window := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if window != ttl {
		t.Fatalf("validity window: got %v want %v", window, ttl)
	}
}

func TestCodec_Expired(t *testing.T) {
	t.Parallel()

	codec := NewCodec("secret", -1*time.Second)

	tok, err := codec.Encode(codec.NewClaims("carol"))
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	_, err = codec.Decode(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestCodec_WrongKey(t *testing.T) {
	t.Parallel()

	tok, err := NewCodec("right-key", time.Hour).Encode(NewCodec("right-key", time.Hour).NewClaims("dave"))
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	_, err = NewCodec("wrong-key", time.Hour).Decode(tok)
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestCodec_CorruptedToken(t *testing.T) {
	t.Parallel()

	codec := NewCodec("secret", time.Hour)
	tok, err := codec.Encode(codec.NewClaims("erin"))
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	// Flip a character inside the signature segment.
	dot := strings.LastIndex(tok, ".")
	sig := []byte(tok[dot+1:])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	corrupted := tok[:dot+1] + string(sig)

	_, err = codec.Decode(corrupted)
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestCodec_Malformed(t *testing.T) {
	t.Parallel()

	codec := NewCodec("k", time.Hour)
	for _, tok := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		if _, err := codec.Decode(tok); !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("Decode(%q): expected ErrMalformedToken, got %v", tok, err)
		}
	}
}
