// Package metrics exposes Prometheus instrumentation for the case draft
// workflow and the HTTP layer.
package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AutosaveTotal counts autosave flushes by result (saved, skipped, error).
	AutosaveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casebook_autosave_total",
		Help: "Autosave flush attempts by result.",
	}, []string{"result"})

	// DraftSavesTotal counts explicit draft saves (manual saves and step transitions).
	DraftSavesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casebook_draft_saves_total",
		Help: "Explicit draft persistence operations.",
	})

	// CaseCommitsTotal counts wizard submissions by result (committed, rejected, error).
	CaseCommitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casebook_case_commits_total",
		Help: "Case draft submissions by result.",
	}, []string{"result"})

	// HTTPRequestsTotal counts HTTP requests by method, path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casebook_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration observes request latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "casebook_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Handler returns an echo handler serving the Prometheus scrape endpoint.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
