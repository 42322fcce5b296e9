package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/portfolio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portfolio/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/portfolio/internal/httpserver/mw"
	"github.com/MrSnakeDoc/portfolio/internal/logger"
)

func init() { Register(registerTerminal) }

func registerTerminal(r chi.Router, d deps.Deps) {
	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.RateLimitBurst,
		RefillPerMin: d.RateLimitPerMin,
		MaxEntries:   10000,
		TrustProxy:   d.TrustProxy,
		Key:          handlers.TerminalRateKey(d),
		OnLimited: func(r *http.Request, key string) {
			d.Metrics.RateLimited("terminal")
			d.Logger.Debug("terminal request rate limited", logger.String("key", key))
		},
	}))
	limited.Post("/api/terminal", handlers.TerminalExec(d))
	limited.Get("/api/terminal", handlers.TerminalLines(d))
	limited.Delete("/api/terminal", handlers.TerminalClear(d))
}
