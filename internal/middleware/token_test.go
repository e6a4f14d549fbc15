package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, req *http.Request) string {
	t.Helper()
	var got string
	h := SessionToken(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = GetSessionToken(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestSessionToken(t *testing.T) {
	t.Run("Should read a bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc.def")
		assert.Equal(t, "abc.def", capture(t, req))
	})

	t.Run("Should accept the scheme in any case", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer  abc")
		assert.Equal(t, "abc", capture(t, req))
	})

	t.Run("Should fall back to the query parameter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?session_token=xyz", nil)
		assert.Equal(t, "xyz", capture(t, req))
	})

	t.Run("Should prefer the header over the query parameter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?session_token=xyz", nil)
		req.Header.Set("Authorization", "Bearer abc")
		assert.Equal(t, "abc", capture(t, req))
	})

	t.Run("Should ignore other schemes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		assert.Empty(t, capture(t, req))
	})
}
