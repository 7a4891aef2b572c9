package identity

import (
	"net/http"
	"strings"
)

// HeaderUserID is set by the API gateway after it has authenticated the caller.
const HeaderUserID = "X-User-ID"

// Middleware copies the gateway-supplied user id into the request context.
// Requests without the header pass through; handlers that need an identity
// reject them with 401.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID := strings.TrimSpace(r.Header.Get(HeaderUserID)); userID != "" {
			r = r.WithContext(WithUserID(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}
