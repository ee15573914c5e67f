package handler

import (
	"net/http"

	"github.com/evyataryagoni/visitortrack/internal/service"
)

// StatsHandler serves the aggregate visitor statistics
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler creates a new stats handler with the given service
func NewStatsHandler(service *service.StatsService) *StatsHandler {
	return &StatsHandler{
		service: service,
	}
}

// Stats handles GET /v1/visitors
//
// Always responds 200 with a structurally valid VisitorStats payload:
// the service converts store failures into empty stats, so a transient
// outage degrades the dashboard instead of breaking it.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.service.ComputeStats(r.Context())
	respondJSON(w, http.StatusOK, stats)
}
