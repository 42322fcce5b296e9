package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/portfolio/internal/logger"
	"github.com/MrSnakeDoc/portfolio/internal/utils"
)

// EnforceHost only lets admin requests through when the Host header matches
// one of allowedHosts. Patterns are case-insensitive, a port in the Host
// header is ignored unless the pattern names one, and "*.example.com"
// matches any subdomain. An empty list lets everything through.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	patterns := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			patterns = append(patterns, h)
		}
	}
	if len(patterns) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	log = log.With(logger.Component("admin_host"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hostAllowed(r.Host, patterns) {
				log.Warn("admin request refused",
					logger.String("host", r.Host),
					logger.String("path", r.URL.Path))
				deny(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hostAllowed(host string, patterns []string) bool {
	host = strings.ToLower(host)
	bare := utils.ParseHostNoPort(host)
	for _, p := range patterns {
		if matchHost(host, p) || matchHost(bare, p) {
			return true
		}
	}
	return false
}

// matchHost checks if host matches pattern (supports wildcard *.example.com)
func matchHost(host, pattern string) bool {
	if host == pattern {
		return true
	}
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(suffix, ".") {
		return len(host) > len(suffix) && strings.HasSuffix(host, suffix)
	}
	return false
}
