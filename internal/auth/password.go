package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted bcrypt hash suitable for storage.
// The plaintext is never persisted or logged.
func HashPassword(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether secret matches the stored hash.
// bcrypt's comparison is constant-time with respect to the hash.
func VerifyPassword(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
