package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/form"
	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/portfolio/internal/domain"
	"github.com/MrSnakeDoc/portfolio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portfolio/internal/httpserver/mw"
	"github.com/MrSnakeDoc/portfolio/internal/logger"
)

type pagesQuery struct {
	Tag  string `form:"tag" validate:"max=64"`
	Page int    `form:"page" validate:"gte=0,lte=1000000"`
	Size int    `form:"size" validate:"gte=0,lte=100"`
}

type pagesResponse struct {
	Pages []domain.BlogPageMeta `json:"pages"`
	Page  int                   `json:"page"`
	Size  int                   `json:"size"`
	Tag   string                `json:"tag,omitempty"`
}

type pageResponse struct {
	Meta         domain.BlogPageMeta `json:"meta"`
	Content      string              `json:"content"`
	Technologies []domain.Technology `json:"technologies"`
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

// BlogPages lists page metadata, newest first, optionally filtered by tag.
func BlogPages(d deps.Deps) http.HandlerFunc {
	decoder := form.NewDecoder()
	validate := validator.New(validator.WithRequiredStructEnabled())

	return func(w http.ResponseWriter, r *http.Request) {
		var q pagesQuery
		if err := decoder.Decode(&q, r.URL.Query()); err != nil {
			writeError(w, http.StatusBadRequest, "invalid query parameters")
			return
		}
		if err := validate.Struct(q); err != nil {
			writeError(w, http.StatusBadRequest, "invalid query parameters")
			return
		}

		filter := domain.GetPagesFilter{Tag: q.Tag, PageIndex: q.Page, PageSize: q.Size}.Normalized()
		if filter.Tag != "" {
			mw.Annotate(r.Context(), logger.String("tag", filter.Tag))
		}
		pages := d.BlogIndex.GetPages(filter)

		metas := make([]domain.BlogPageMeta, 0, len(pages))
		for _, p := range pages {
			metas = append(metas, p.Meta)
		}
		writeJSON(w, http.StatusOK, pagesResponse{
			Pages: metas,
			Page:  filter.PageIndex,
			Size:  filter.PageSize,
			Tag:   filter.Tag,
		})
	}
}

// BlogPage returns one page by slug. The slug is the rest of the path and
// may contain slashes.
func BlogPage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "*")
		mw.Annotate(r.Context(), logger.String("slug", slug))
		page, ok := d.BlogIndex.GetPage(slug)
		if !ok {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}

		writeJSON(w, http.StatusOK, pageResponse{
			Meta:         page.Meta,
			Content:      page.Content,
			Technologies: d.Catalog.Resolve(page.Meta.Technologies),
		})
	}
}

func BlogTags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags := d.BlogIndex.GetTags()
		if tags == nil {
			tags = []string{}
		}
		writeJSON(w, http.StatusOK, tagsResponse{Tags: tags})
	}
}
