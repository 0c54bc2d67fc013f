package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "code"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)

	searchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "searches_total",
			Help: "Total number of executed route searches.",
		},
	)
	searchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_result_count",
			Help:    "Distribution of result-set sizes per search.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)
	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Number of result exports by format.",
		},
		[]string{"format"},
	)

	flightRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fare_rows",
			Help: "Number of fare rows in the source database.",
		},
	)
)

var registerOnce sync.Once

// Register installs all collectors on the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			searchesTotal,
			searchResults,
			exportsTotal,
			flightRows,
		)
	})
}

func ObserveHTTPRequest(method, route string, code int, d time.Duration) {
	c := strconv.Itoa(code)
	httpRequests.WithLabelValues(method, route, c).Inc()
	httpDuration.WithLabelValues(method, route, c).Observe(d.Seconds())
}

func ObserveSearch(resultCount int) {
	searchesTotal.Inc()
	searchResults.Observe(float64(resultCount))
}

func ObserveExport(format string) {
	exportsTotal.WithLabelValues(format).Inc()
}

func SetFareRowCount(n int64) {
	flightRows.Set(float64(n))
}
