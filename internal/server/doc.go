// Package server provides HTTP routing, middleware, and the handlers of the flight search proxy.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers method patterns on [http.ServeMux].
//
// # Endpoints
//
//   - GET /search-flights : [SearchHandler] relays the upstream JSON, or 500 {"error":"API_ERROR","detail":...}
//   - GET /health : plain "ok"
//   - GET /metrics : Prometheus scrape, when enabled
//
// # Middleware
//
// [RequestID] tags each request with an X-Request-ID, [Logger] writes one line per request,
// and [Metrics] feeds the request counters in internal/telemetry.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
