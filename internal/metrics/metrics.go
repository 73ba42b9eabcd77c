// Package metrics exposes Prometheus collectors for the ingestion service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sourcesTotal           *prometheus.CounterVec
	articlesTotal          *prometheus.CounterVec
	robotsDecisionsTotal   *prometheus.CounterVec
	fetchDurationSeconds   *prometheus.HistogramVec
	analyzeDurationSeconds prometheus.Histogram

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		sourcesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inforadar_sources_total",
				Help: "Total number of sources processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		articlesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inforadar_articles_total",
				Help: "Total number of articles considered, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		robotsDecisionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inforadar_robots_decisions_total",
				Help: "Total robots.txt gate decisions, labeled by verdict.",
			},
			[]string{"verdict"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "inforadar_fetch_duration_seconds",
				Help:    "Histogram of source fetch latencies, labeled by source type.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"source_type"},
		)

		analyzeDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "inforadar_analyze_duration_seconds",
				Help:    "Histogram of per-article analysis latencies.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSource increments the source counter for the given outcome.
func ObserveSource(outcome string) {
	if sourcesTotal == nil {
		return
	}
	sourcesTotal.WithLabelValues(outcome).Inc()
}

// ObserveArticle increments the article counter for the given outcome.
func ObserveArticle(outcome string) {
	if articlesTotal == nil {
		return
	}
	articlesTotal.WithLabelValues(outcome).Inc()
}

// ObserveRobotsDecision increments the robots gate counter for the verdict.
func ObserveRobotsDecision(verdict string) {
	if robotsDecisionsTotal == nil {
		return
	}
	robotsDecisionsTotal.WithLabelValues(verdict).Inc()
}

// ObserveFetchDuration records the duration of one source fetch.
func ObserveFetchDuration(sourceType string, duration time.Duration) {
	if fetchDurationSeconds == nil {
		return
	}
	fetchDurationSeconds.WithLabelValues(sourceType).Observe(duration.Seconds())
}

// ObserveAnalyzeDuration records the duration of one analysis call.
func ObserveAnalyzeDuration(duration time.Duration) {
	if analyzeDurationSeconds == nil {
		return
	}
	analyzeDurationSeconds.Observe(duration.Seconds())
}
