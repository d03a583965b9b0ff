// package telemetry holds the Prometheus collectors shared by the server and services
package telemetry

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "qaren"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_active_requests",
			Help:      "Number of in-flight HTTP requests",
		},
	)

	tokenExchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_exchanges_total",
			Help:      "Client-credentials exchanges against the identity endpoint",
		},
		[]string{"result"},
	)

	upstreamSearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_search_duration_seconds",
			Help:      "Flight-offers upstream latency in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"result"},
	)

	historyWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_writes_total",
			Help:      "Search history inserts",
		},
		[]string{"result"},
	)

	dbConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Open connections to the history database",
		},
	)

	dbConnectionsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_in_use",
			Help:      "History database connections currently in use",
		},
	)
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, path, status string, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// TrackActive increments the in-flight gauge and returns the matching decrement.
func TrackActive() func() {
	httpActiveRequests.Inc()
	return httpActiveRequests.Dec
}

// ObserveTokenExchange counts one identity exchange.
func ObserveTokenExchange(err error) {
	tokenExchangesTotal.WithLabelValues(result(err)).Inc()
}

// ObserveUpstreamSearch records the latency of one upstream search call.
func ObserveUpstreamSearch(d time.Duration, err error) {
	upstreamSearchDuration.WithLabelValues(result(err)).Observe(d.Seconds())
}

// ObserveHistoryWrite counts one history insert.
func ObserveHistoryWrite(err error) {
	historyWritesTotal.WithLabelValues(result(err)).Inc()
}

// UpdatePoolStats copies the connection pool statistics of db into the gauges.
func UpdatePoolStats(db *sql.DB) {
	if db == nil {
		return
	}
	stats := db.Stats()
	dbConnectionsOpen.Set(float64(stats.OpenConnections))
	dbConnectionsInUse.Set(float64(stats.InUse))
}

// Handler returns the scrape endpoint for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
