package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/portfolio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portfolio/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/portfolio/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	admin := r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)
	admin.Post("/reload", handlers.Reload(d))
	admin.Get("/infra", handlers.Infra(d))
	if d.Metrics != nil {
		admin.Method("GET", "/metrics", d.Metrics.Handler())
	}
}
