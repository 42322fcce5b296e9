package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/portfolio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portfolio/internal/httpserver/handlers"
)

func init() { Register(registerCatalog) }

func registerCatalog(r chi.Router, d deps.Deps) {
	r.Get("/api/technologies", handlers.Technologies(d))
	r.Get("/api/technologies/{kind}", handlers.Technology(d))
	r.Get("/api/experiences", handlers.Experiences(d))
	r.Get("/api/projects", handlers.Projects(d))
}
