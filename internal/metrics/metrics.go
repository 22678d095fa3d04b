// Package metrics exposes Prometheus collectors for the crawler service.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	crawlerTasksClaimedTotal   prometheus.Counter
	crawlerTasksEnqueuedTotal  prometheus.Counter
	crawlerPagesTotal          *prometheus.CounterVec
	crawlerFetchDurationSecond *prometheus.HistogramVec
	crawlerActiveWorkers       prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		crawlerTasksClaimedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_tasks_claimed_total",
				Help: "Total number of tasks claimed from the queue.",
			},
		)

		crawlerTasksEnqueuedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_tasks_enqueued_total",
				Help: "Total number of new tasks added to the queue.",
			},
		)

		crawlerPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_pages_total",
				Help: "Total number of pages processed, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		crawlerFetchDurationSecond = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawler_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies, labeled by site.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
			},
			[]string{"site"},
		)

		crawlerActiveWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawler_active_workers",
				Help: "Number of workers currently processing a task.",
			},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveTaskClaimed increments the claimed task counter.
func ObserveTaskClaimed() {
	crawlerTasksClaimedTotal.Inc()
}

// ObserveTasksEnqueued adds to the enqueued task counter.
func ObserveTasksEnqueued(n int64) {
	if n > 0 {
		crawlerTasksEnqueuedTotal.Add(float64(n))
	}
}

// ObservePage increments the page counter for the given site and outcome.
func ObservePage(site, outcome string) {
	crawlerPagesTotal.WithLabelValues(SanitizeSite(site), outcome).Inc()
}

// ObserveFetch records the duration of a page fetch.
func ObserveFetch(site string, duration time.Duration) {
	crawlerFetchDurationSecond.WithLabelValues(SanitizeSite(site)).Observe(duration.Seconds())
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	crawlerActiveWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	crawlerActiveWorkers.Dec()
}
