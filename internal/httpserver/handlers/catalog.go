package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/portfolio/internal/domain"
	"github.com/MrSnakeDoc/portfolio/internal/httpserver/deps"
)

// The catalog stores technology kinds; views replace them with the full
// technology so clients need a single request.
type experienceView struct {
	domain.Experience
	Technologies []domain.Technology `json:"technologies"`
}

type projectView struct {
	domain.Project
	Technologies []domain.Technology `json:"technologies"`
}

func Technologies(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Catalog.Technologies())
	}
}

// Technology accepts either the key ("csharp") or the numeric kind ("1").
func Technology(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := domain.ParseTechnologyKind(chi.URLParam(r, "kind"))
		if !ok {
			writeError(w, http.StatusNotFound, "unknown technology")
			return
		}
		tech, ok := d.Catalog.Technology(kind)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown technology")
			return
		}
		writeJSON(w, http.StatusOK, tech)
	}
}

func Experiences(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		experiences := d.Catalog.Experiences()
		views := make([]experienceView, 0, len(experiences))
		for _, exp := range experiences {
			views = append(views, experienceView{
				Experience:   exp,
				Technologies: d.Catalog.Resolve(exp.Technologies),
			})
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func Projects(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects := d.Catalog.Projects()
		views := make([]projectView, 0, len(projects))
		for _, p := range projects {
			views = append(views, projectView{
				Project:      p,
				Technologies: d.Catalog.Resolve(p.Technologies),
			})
		}
		writeJSON(w, http.StatusOK, views)
	}
}
