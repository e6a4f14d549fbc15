// Package middleware carries the caller's session token from the transport
// into the request context. It does not authenticate; the services do.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

type tokenKey struct{}

// SessionToken stores the bearer token, or the session_token query parameter
// when no Authorization header is present.
func SessionToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			token = strings.TrimSpace(r.URL.Query().Get("session_token"))
		}
		if token != "" {
			r = r.WithContext(WithSessionToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// GetSessionToken returns "" when the request carried no token.
func GetSessionToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
