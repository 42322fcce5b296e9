// Package metrics exposes the service counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portfolio"

// unknownCommand labels dispatches that matched no command, keeping the
// label set bounded.
const unknownCommand = "unknown"

// Metrics owns a private registry and every collector of the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	reloads        *prometheus.CounterVec
	reloadDuration prometheus.Histogram
	pages          prometheus.Gauge
	tags           prometheus.Gauge
	commands       *prometheus.CounterVec
	sessions       prometheus.Gauge
	rateLimited    *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blog_reload_total",
			Help:      "Blog index reloads by result.",
		}, []string{"result"}),
		reloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "blog_reload_duration_seconds",
			Help:      "Time spent rescanning the blog content root.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		pages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "blog_pages",
			Help:      "Pages in the blog index.",
		}),
		tags: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "blog_tags",
			Help:      "Distinct tags in the blog index.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "terminal_commands_total",
			Help:      "Terminal commands dispatched.",
		}, []string{"command", "found"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "terminal_sessions",
			Help:      "Live terminal sessions.",
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests refused by a rate limiter.",
		}, []string{"limiter"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.reloads,
		m.reloadDuration,
		m.pages,
		m.tags,
		m.commands,
		m.sessions,
		m.rateLimited,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ReloadFinished records one blog reload.
func (m *Metrics) ReloadFinished(took time.Duration, pages, tags int, err error) {
	if m == nil {
		return
	}
	m.reloadDuration.Observe(took.Seconds())
	if err != nil {
		m.reloads.WithLabelValues("error").Inc()
		return
	}
	m.reloads.WithLabelValues("success").Inc()
	m.pages.Set(float64(pages))
	m.tags.Set(float64(tags))
}

// CommandDispatched implements terminal.Recorder.
func (m *Metrics) CommandDispatched(name string, found bool) {
	if m == nil {
		return
	}
	label := unknownCommand
	if found {
		label = strings.ToLower(name)
	}
	m.commands.WithLabelValues(label, strconv.FormatBool(found)).Inc()
}

// SessionsChanged records the number of live terminal sessions.
func (m *Metrics) SessionsChanged(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}

// RateLimited records a request refused by the named limiter.
func (m *Metrics) RateLimited(limiter string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(limiter).Inc()
}
