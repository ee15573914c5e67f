package service

import (
	"context"

	"github.com/evyataryagoni/visitortrack/internal/identity"
	"github.com/evyataryagoni/visitortrack/internal/logger"
	"github.com/evyataryagoni/visitortrack/internal/metrics"
	"github.com/evyataryagoni/visitortrack/internal/models"
	"github.com/evyataryagoni/visitortrack/internal/store"
)

// Dashboard messages for the two empty-stats cases. Keeping them
// distinct lets the frontend tell "nothing set up" from "try again".
const (
	msgNotConfigured = "visitor tracking is not configured"
	msgUnavailable   = "visitor data temporarily unavailable"
)

// StatsService is the aggregation core: it folds the full visitor
// record set into the dashboard statistics. Purely a read, no side
// effects.
type StatsService struct {
	store   store.Store // nil when persistence is not configured
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(dataStore store.Store, m *metrics.Metrics, log *logger.Logger) *StatsService {
	if log == nil {
		log = logger.NewDefault()
	}
	return &StatsService{
		store:   dataStore,
		metrics: m,
		logger:  log.WithComponent("StatsService"),
	}
}

// ComputeStats scans every visitor record and folds the aggregates.
//
// It never returns an error: a missing store or a failed scan degrades
// to a structurally valid zero/empty result so the dashboard renders
// zeros instead of crashing on a transient store issue.
func (s *StatsService) ComputeStats(ctx context.Context) *models.VisitorStats {
	if s.store == nil {
		s.countStats("not_configured")
		return models.EmptyStats(msgNotConfigured)
	}

	records, err := s.store.ScanAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to scan visitors, returning empty stats")
		s.countStats("store_error")
		return models.EmptyStats(msgUnavailable)
	}

	stats := &models.VisitorStats{
		UniqueVisitors: len(records),
		VisitsByDate:   map[string]int64{},
		Visitors:       records,
	}

	countries := map[string]bool{}
	for _, record := range records {
		stats.TotalVisits += record.Visits

		if record.Country != models.NotFound {
			countries[record.Country] = true
		}

		if date, ok := visitDate(&record); ok {
			stats.VisitsByDate[date] += record.Visits
		}
	}
	stats.Countries = len(countries)

	if len(records) == 0 {
		s.countStats("empty")
	} else {
		s.countStats("success")
	}

	s.logger.Debug().
		Int64("total_visits", stats.TotalVisits).
		Int("unique_visitors", stats.UniqueVisitors).
		Int("countries", stats.Countries).
		Msg("Visitor stats computed")

	return stats
}

// visitDate extracts the calendar date a record's bucket falls on.
// The structured bucket time is authoritative; the key is only parsed
// for legacy rows that were stored without one. Records with neither
// are skipped from the per-date fold (they still count toward totals).
func visitDate(record *models.VisitorRecord) (string, bool) {
	if !record.BucketTime.IsZero() {
		return record.BucketTime.Format("2006/01/02"), true
	}
	return identity.DateFromKey(record.ID)
}

func (s *StatsService) countStats(result string) {
	if s.metrics != nil {
		s.metrics.StatsRequestsTotal.WithLabelValues(result).Inc()
	}
}
