package validators

import (
	"net/http"
	"strings"
)

// SessionToken extracts the opaque session token from a request. The
// session cookie wins; an Authorization bearer header is accepted for
// clients that cannot carry cookies. Returns "" when neither is present.
func SessionToken(r *http.Request, cookieName string) string {
	if cookieName != "" {
		if cookie, err := r.Cookie(cookieName); err == nil {
			if token := strings.TrimSpace(cookie.Value); token != "" {
				return token
			}
		}
	}

	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
