package server

import (
	"database/sql"
	"io"
	"net/http"

	"github.com/desertthunder/qaren/internal/telemetry"
)

// HealthHandler answers "ok" as plain text.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	})
}

// MetricsHandler serves the Prometheus scrape, refreshing pool gauges for db first when set.
func MetricsHandler(db *sql.DB) http.Handler {
	scrape := telemetry.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		telemetry.UpdatePoolStats(db)
		scrape.ServeHTTP(w, r)
	})
}
