package auth

import (
	"fmt"
	"strings"
)

// RefreshCookieName is the cookie attribute carrying the raw refresh secret.
const RefreshCookieName = "refresh_token"

// CookiePath scopes the refresh cookie to the auth endpoints only, so the
// secret is never sent with ordinary API requests.
const CookiePath = "/api/auth"

// BuildRefreshCookie returns a Set-Cookie header value carrying the raw
// refresh secret. The attribute set is fixed: HttpOnly, Secure,
// SameSite=Strict, path-scoped to the auth endpoints. Domain is appended
// only when configured.
func BuildRefreshCookie(raw string, maxAgeSeconds int, domain string) string {
	cookie := fmt.Sprintf("%s=%s; Path=%s; Max-Age=%d; HttpOnly; Secure; SameSite=Strict",
		RefreshCookieName, raw, CookiePath, maxAgeSeconds)
	if domain != "" {
		cookie += "; Domain=" + domain
	}
	return cookie
}

// BuildClearCookie returns a Set-Cookie header value that instructs the
// client to delete the refresh cookie: same attribute set, Max-Age=0, no
// secret value.
func BuildClearCookie(domain string) string {
	return BuildRefreshCookie("", 0, domain)
}

// ExtractRefreshToken pulls the raw refresh secret out of a Cookie request
// header. It returns the first non-empty value under the fixed key, or ""
// when the header is missing, the key is absent or the value is empty.
func ExtractRefreshToken(cookieHeader string) string {
	for _, part := range strings.Split(cookieHeader, ";") {
		part = strings.TrimSpace(part)
		value, found := strings.CutPrefix(part, RefreshCookieName+"=")
		if found && value != "" {
			return value
		}
	}
	return ""
}
