package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/portfolio/internal/logger"
	"github.com/MrSnakeDoc/portfolio/internal/utils"
)

// AllowOnlyCIDRS guards the admin endpoints (reload, infra, metrics,
// readiness) with an IP/CIDR allow list. An empty list lets everything
// through. Entries that do not parse are reported once at startup and
// ignored.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	log = log.With(logger.Component("admin_acl"))

	m, invalid := utils.NewIPMatcher(allowed)
	for _, entry := range invalid {
		log.Warn("ignoring invalid allowed CIDR", logger.String("entry", entry))
	}
	if m.IsEmpty() {
		log.Debug("no allowed CIDRs, admin endpoints are open")
		return func(next http.Handler) http.Handler { return next }
	}
	log.Debug("admin allow list ready",
		logger.Int("rules", m.Len()),
		logger.Bool("trust_proxy", trustProxy))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr, ok := utils.ClientAddr(r, trustProxy)
			if !ok || !m.Contains(addr) {
				log.Warn("admin request refused",
					logger.String("client_ip", utils.ClientIP(r, trustProxy)),
					logger.String("path", r.URL.Path))
				deny(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
