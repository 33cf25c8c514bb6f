package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stock_analytics"

var (
	// Registry holds the application collectors. Both binaries share it.
	Registry = prometheus.NewRegistry()

	tickersFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "tickers_total",
			Help:      "Tickers processed by ingestion, by outcome.",
		},
		[]string{"status"},
	)

	rowsFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "rows_fetched_total",
			Help:      "Price rows returned by the provider.",
		},
	)

	rowsInserted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "rows_inserted_total",
			Help:      "Price rows newly written to the store.",
		},
	)

	storeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "failures_total",
			Help:      "Store operations that failed.",
		},
		[]string{"operation"},
	)

	ingestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "run_duration_seconds",
			Help:      "Duration of an ingestion run.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	dashboardRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "runs_total",
			Help:      "Dashboard computations, by outcome.",
		},
		[]string{"outcome"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(
		tickersFetched,
		rowsFetched,
		rowsInserted,
		storeFailures,
		ingestDuration,
		dashboardRuns,
		httpRequests,
		httpDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// -----------------------------------------------------------------------------

// RecordTicker counts one ticker outcome: "ok", "no_data".
func RecordTicker(status string) {
	tickersFetched.WithLabelValues(status).Inc()
}

func RecordRowsFetched(n int) {
	rowsFetched.Add(float64(n))
}

func RecordRowsInserted(n int64) {
	rowsInserted.Add(float64(n))
}

func RecordStoreFailure(operation string) {
	storeFailures.WithLabelValues(operation).Inc()
}

func RecordIngestDuration(d time.Duration) {
	ingestDuration.Observe(d.Seconds())
}

// RecordDashboardRun counts one dashboard computation: "ok", "empty_selection", "error".
func RecordDashboardRun(outcome string) {
	dashboardRuns.WithLabelValues(outcome).Inc()
}

// -----------------------------------------------------------------------------

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
// One-shot jobs use it instead of a scrape endpoint.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}

// -----------------------------------------------------------------------------

// GinMiddleware records request counts and durations per route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
