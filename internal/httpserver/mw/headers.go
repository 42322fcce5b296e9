package mw

import (
	"net/http"
	"strings"
)

// SecureHeaders sets the browser hardening headers on every response.
// The service only returns JSON and XML, so the policy denies everything.
func SecureHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			next.ServeHTTP(w, r)
		})
	}
}

// CacheControl sets a default Cache-Control header per path family.
// Handlers may override it.
func CacheControl() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			switch {
			case strings.HasPrefix(path, "/api/terminal"):
				w.Header().Set("Cache-Control", "no-store")
			case strings.HasPrefix(path, "/api/"):
				w.Header().Set("Cache-Control", "public, max-age=300")
			default:
				w.Header().Set("Cache-Control", "no-store")
			}
			next.ServeHTTP(w, r)
		})
	}
}
