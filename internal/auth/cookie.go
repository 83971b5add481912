package auth

import "net/http"

// CookieName is the session cookie. Its value is "Bearer " + token; the
// cookie is the entire session state.
const CookieName = "access_token"

// BearerScheme prefixes the token inside the cookie value.
const BearerScheme = "Bearer"

// SessionCookie wraps a bearer value as the session cookie with fixed
// security attributes.
func SessionCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionCookie returns a cookie that instructs the client to
// delete the session cookie.
func ExpiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
