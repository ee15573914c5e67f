package v1

import (
	"github.com/evyataryagoni/visitortrack/internal/handler"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures all v1 API routes
func SetupRoutes(trackHandler *handler.TrackHandler, statsHandler *handler.StatsHandler) chi.Router {
	r := chi.NewRouter()

	// Page-view signal (fire-and-forget from the client)
	// POST /v1/track
	r.Post("/track", trackHandler.Track)

	// Aggregate statistics for the dashboard
	// GET /v1/visitors
	r.Get("/visitors", statsHandler.Stats)

	return r
}
