// package server contains middleware & handlers for the flight search proxy
package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/qaren/internal/models"
	"github.com/desertthunder/qaren/internal/services"
	"github.com/desertthunder/qaren/internal/shared"
)

// ShutdownTimeout bounds how long in-flight requests may drain on shutdown.
const ShutdownTimeout = 5 * time.Second

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the proxy.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the mux patterns ("GET /path") this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// ServerOpts holds the dependencies of a [Server].
type ServerOpts struct {
	Addr     string
	Searcher services.FlightSearcher
	History  models.HistoryStore // optional
	DB       *sql.DB             // optional; reported in pool metrics
	Logger   *log.Logger
	Metrics  bool // expose GET /metrics
}

// Server is the HTTP surface of the proxy.
type Server struct {
	addr   string
	router *BasicRouter
	logger *log.Logger
}

// New builds the router: search, health and optionally metrics.
func New(opts ServerOpts) *Server {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	r := NewBasicRouter()
	r.Use(RequestID(), Logger(opts.Logger), Metrics())

	r.Handler(NewSearchHandler(opts.Searcher, opts.History, opts.Logger))
	r.Handle(http.MethodGet, "/health", HealthHandler())
	if opts.Metrics {
		r.Handle(http.MethodGet, "/metrics", MetricsHandler(opts.DB))
	}

	return &Server{addr: opts.Addr, router: r, logger: opts.Logger}
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then drains for up to [ShutdownTimeout].
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down", "timeout", ShutdownTimeout)
		shutCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
