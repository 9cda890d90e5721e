package token

import (
	"net/http"
	"strings"
)

// CookieName is the cookie carrying the credential for browser navigation.
const CookieName = "token"

// FromRequest extracts the raw credential from the Authorization header
// ("Bearer <token>", scheme case-insensitive) or, failing that, from the
// token cookie. It returns "" when neither channel carries one.
func FromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if raw := strings.TrimSpace(parts[1]); raw != "" {
				return raw
			}
		}
	}
	if ck, err := r.Cookie(CookieName); err == nil {
		return ck.Value
	}
	return ""
}
