package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/portfolio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portfolio/internal/logger"
)

// Reload triggers a manual rescan of the blog content, and asks the other
// instances to do the same when a publisher is configured.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual blog reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
		default:
			d.Logger.Warn("blog reload already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := w.Write([]byte("⏳ Reload already in progress, please wait\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
			return
		}

		if d.ReloadPublisher != nil {
			if err := d.ReloadPublisher.Publish(r.Context()); err != nil {
				d.Logger.Warn("failed to broadcast reload, other instances keep their content",
					logger.Error(err))
			}
		}

		w.WriteHeader(http.StatusAccepted)
		if _, err := w.Write([]byte("✅ Reload triggered successfully\n")); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}
