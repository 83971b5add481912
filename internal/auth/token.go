package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Decode failure modes. They are distinguished in logs but must be
// collapsed to a single generic unauthenticated response at the HTTP
// boundary.
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("bad token signature")
	ErrTokenExpired   = errors.New("token expired")
)

// Claims is the signed session payload: subject plus validity window.
// Group membership is deliberately absent; authorization is re-derived
// from storage on every request.
type Claims = jwt.RegisteredClaims

// Codec encodes and validates signed session tokens. The signing key
// and TTL are fixed at construction; rotating the key invalidates all
// outstanding tokens.
type Codec struct {
	key []byte
	ttl time.Duration
}

func NewCodec(key string, ttl time.Duration) *Codec {
	return &Codec{key: []byte(key), ttl: ttl}
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// NewClaims builds a claims set for the subject with the configured
// validity window starting now.
func (c *Codec) NewClaims(subject string) Claims {
	now := time.Now()
	return Claims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		ID:        uuid.NewString(),
	}
}

// Encode signs the claims into a token string.
func (c *Codec) Encode(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.key)
}

// Decode parses and validates a token string. On failure the returned
// error is exactly one of ErrMalformedToken, ErrBadSignature, or
// ErrTokenExpired.
func (c *Codec) Decode(tokenString string) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrBadSignature
		default:
			return Claims{}, ErrMalformedToken
		}
	}
	if !token.Valid {
		return Claims{}, ErrMalformedToken
	}
	return claims, nil
}
