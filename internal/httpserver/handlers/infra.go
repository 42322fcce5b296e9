package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/portfolio/internal/httpserver/deps"
)

const redisCheckTimeout = 2 * time.Second

type componentStatus struct {
	OK          bool   `json:"ok"`
	PagesLoaded *int   `json:"pages_loaded,omitempty"`
	TagsLoaded  *int   `json:"tags_loaded,omitempty"`
	Sessions    *int   `json:"sessions,omitempty"`
	LastReload  string `json:"last_reload,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Error       string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pages := d.BlogIndex.Count()
		tags := d.BlogIndex.TagCount()
		lastReload := d.BlogIndex.LastReload()
		lastReloadStr := "never"
		if !lastReload.IsZero() {
			lastReloadStr = lastReload.Format("2006-01-02 15:04:05")
		}
		sessions := d.Sessions.Len()

		components := map[string]componentStatus{
			"blog": {
				OK:          d.BlogIndex.Ready(),
				PagesLoaded: &pages,
				TagsLoaded:  &tags,
				LastReload:  lastReloadStr,
			},
			"terminal": {
				OK:       true,
				Sessions: &sessions,
			},
			"redis": checkRedis(r.Context(), d),
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

func overallStatus(components map[string]componentStatus) string {
	if blog, exists := components["blog"]; exists && !blog.OK {
		return "critical" // nothing to serve
	}
	if redis, exists := components["redis"]; exists && !redis.OK {
		return "degraded" // reloads stay local
	}
	return "operational"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "reload-broadcast-disabled",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, redisCheckTimeout)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "reload-broadcast-disabled",
			Error:  err.Error(),
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "reload-broadcast-enabled",
	}
}
