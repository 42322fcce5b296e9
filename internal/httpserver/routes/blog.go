package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/portfolio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portfolio/internal/httpserver/handlers"
)

func init() { Register(registerBlog) }

func registerBlog(r chi.Router, d deps.Deps) {
	r.Get("/api/blog/pages", handlers.BlogPages(d))
	r.Get("/api/blog/pages/*", handlers.BlogPage(d))
	r.Get("/api/blog/tags", handlers.BlogTags(d))

	r.Get("/rss.xml", handlers.RSS(d))
	r.Get("/sitemap.xml", handlers.Sitemap(d))
}
