package router

import (
	"net/http"

	"github.com/evyataryagoni/visitortrack/internal/handler"
	"github.com/evyataryagoni/visitortrack/internal/limiter"
	"github.com/evyataryagoni/visitortrack/internal/logger"
	"github.com/evyataryagoni/visitortrack/internal/metrics"
	custommiddleware "github.com/evyataryagoni/visitortrack/internal/middleware"
	v1 "github.com/evyataryagoni/visitortrack/internal/router/v1"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates and configures the Chi router with all middleware
// and routes
//
// Parameters:
//   - trackHandler: the page-view tracking handler
//   - statsHandler: the visitor stats handler
//   - rateLimiter: the rate limiter (memory or Redis)
//   - m: metrics collector
//   - log: structured logger
func SetupRouter(trackHandler *handler.TrackHandler, statsHandler *handler.StatsHandler, rateLimiter limiter.Limiter, m *metrics.Metrics, log *logger.Logger) chi.Router {
	r := chi.NewRouter()

	// Global middleware - order matters: RequestID first, then logging,
	// then rate limiting
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.RateLimitMiddleware(rateLimiter))
	r.Use(custommiddleware.MetricsMiddleware(m))

	// Versioned API routes
	r.Mount("/v1", v1.SetupRoutes(trackHandler, statsHandler))

	// Health check endpoint - used by load balancers and monitoring
	r.Get("/health", healthCheckHandler)

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// healthCheckHandler returns 200 OK while the service is running
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
