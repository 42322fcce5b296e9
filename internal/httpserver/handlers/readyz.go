package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/portfolio/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
	Pages int  `json:"pages"`
}

// Readyz reports ready once the blog index holds a first snapshot.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		status := http.StatusOK
		ready := d.BlogIndex.Ready()
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyzResponse{
			Ready: ready,
			Pages: d.BlogIndex.Count(),
		})
	}
}
