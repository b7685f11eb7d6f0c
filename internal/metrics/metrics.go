// Package metrics exposes Prometheus collectors for the sync service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	syncsTotal           *prometheus.CounterVec
	fetchDurationSeconds *prometheus.HistogramVec
	fetchFailuresTotal   *prometheus.CounterVec
	httpDurationSeconds  *prometheus.HistogramVec
	itemsExtractedTotal  *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call this
// function multiple times.
func Init() {
	once.Do(func() {
		syncsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "placesync_syncs_total",
				Help: "Total number of sync runs, labeled by outcome.",
			},
			[]string{"status"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "placesync_fetch_duration_seconds",
				Help:    "Histogram of source-page fetch latencies, labeled by page kind.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"page"},
		)

		fetchFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "placesync_fetch_failures_total",
				Help: "Total number of failed source-page fetches, labeled by page kind.",
			},
			[]string{"page"},
		)

		httpDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "placesync_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method, route, and status.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 5},
			},
			[]string{"method", "route", "status"},
		)

		itemsExtractedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "placesync_items_extracted_total",
				Help: "Total number of normalized entries extracted, labeled by kind.",
			},
			[]string{"kind"},
		)
	})
}

// SyncsTotal counts one finished sync run by outcome.
func SyncsTotal(status string) {
	Init()
	syncsTotal.WithLabelValues(status).Inc()
}

// ObserveFetch records one source-page fetch.
func ObserveFetch(page string, d time.Duration, ok bool) {
	Init()
	fetchDurationSeconds.WithLabelValues(page).Observe(d.Seconds())
	if !ok {
		fetchFailuresTotal.WithLabelValues(page).Inc()
	}
}

// ItemsExtracted counts normalized entries produced by one sync run.
func ItemsExtracted(kind string, n int) {
	Init()
	if n > 0 {
		itemsExtractedTotal.WithLabelValues(kind).Add(float64(n))
	}
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	Init()
	httpDurationSeconds.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}
