package middleware

import (
	"context"
	"net/http"
	"strings"
)

type sessionTokenKey struct{}

// Session extracts the bearer token from the Authorization header and
// places it on the request context. It does not reject anything itself;
// handlers that mutate remote state require a token and fail without one.
func Session() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token != "" {
				ctx := context.WithValue(r.Context(), sessionTokenKey{}, token)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SessionToken returns the bearer token carried by the request context, or
// an empty string.
func SessionToken(ctx context.Context) string {
	token, _ := ctx.Value(sessionTokenKey{}).(string)
	return token
}
