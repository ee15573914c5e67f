package handler

import (
	"encoding/json"
	"net/http"

	"github.com/evyataryagoni/visitortrack/internal/models"
	"github.com/evyataryagoni/visitortrack/internal/service"
)

// TrackHandler handles the inbound page-view signal
// This is the handler layer - it deals with HTTP concerns only
// (headers in, JSON out); the tracking logic lives in the service
type TrackHandler struct {
	service *service.TrackService
}

// NewTrackHandler creates a new track handler with the given service
func NewTrackHandler(service *service.TrackService) *TrackHandler {
	return &TrackHandler{
		service: service,
	}
}

// Track handles POST /v1/track
//
// No request body is required; the client identity comes from the
// transport headers. Callers fire-and-forget this endpoint, so the worst
// case is a failure payload with a 500 - never a fatal process error.
func (h *TrackHandler) Track(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.service.RecordVisit(r.Context(), r.Header)
	if err != nil {
		// Generic failure only: internal store detail stays inside the
		// trust boundary
		respondJSON(w, http.StatusInternalServerError, models.TrackResponse{
			Success: false,
			Error:   "Failed to track visit",
		})
		return
	}

	if outcome == service.TrackNotConfigured {
		// A deliberate no-op, not a failure: 200 with a message
		respondJSON(w, http.StatusOK, models.TrackResponse{
			Success: false,
			Message: "Database not configured",
		})
		return
	}

	respondJSON(w, http.StatusOK, models.TrackResponse{Success: true})
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing better to do than report
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
