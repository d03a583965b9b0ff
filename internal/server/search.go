package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/qaren/internal/models"
	"github.com/desertthunder/qaren/internal/services"
	"github.com/desertthunder/qaren/internal/shared"
	"github.com/desertthunder/qaren/internal/telemetry"
)

// SearchHandler proxies GET /search-flights to a [services.FlightSearcher].
//
// Query parameters are forwarded without validation. Every failure is reported as
// a 500 with the API_ERROR envelope.
type SearchHandler struct {
	searcher services.FlightSearcher
	history  models.HistoryStore
	logger   *log.Logger
}

// NewSearchHandler creates a [SearchHandler]. history may be nil.
func NewSearchHandler(searcher services.FlightSearcher, history models.HistoryStore, logger *log.Logger) *SearchHandler {
	return &SearchHandler{
		searcher: searcher,
		history:  history,
		logger:   shared.WithLogger(logger, "handler", "search"),
	}
}

// Routes implements [Handler].
func (h *SearchHandler) Routes() []string {
	return []string{"GET /search-flights"}
}

// ServeHTTP implements [http.Handler].
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := models.NewSearchQuery(r.URL.Query())

	start := time.Now()
	result, err := h.searcher.Search(r.Context(), q)
	h.record(r, q, err, time.Since(start))

	if err != nil {
		h.logger.Warn("search failed", "route", q.Route(), "date", q.Date, "err", err)
		writeAPIError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(result.Bytes())
}

// record stores the outcome in history. A failed write never changes the response.
func (h *SearchHandler) record(r *http.Request, q models.SearchQuery, searchErr error, latency time.Duration) {
	if h.history == nil {
		return
	}

	rec := models.NewSearchRecord(RequestIDFrom(r.Context()), q, searchErr, latency)
	err := h.history.Create(rec)
	telemetry.ObserveHistoryWrite(err)
	if err != nil {
		h.logger.Error("failed to record search", "route", q.Route(), "err", err)
	}
}

// writeAPIError writes {"error":"API_ERROR","detail":<err>} with status 500.
func writeAPIError(w http.ResponseWriter, err error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.Encode(models.ErrorBody{Error: models.APIErrorCode, Detail: err.Error()})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write(bytes.TrimRight(buf.Bytes(), "\n"))
}
