package service

import (
	"context"
	"net/http"
	"time"

	"github.com/evyataryagoni/visitortrack/internal/geo"
	"github.com/evyataryagoni/visitortrack/internal/identity"
	"github.com/evyataryagoni/visitortrack/internal/logger"
	"github.com/evyataryagoni/visitortrack/internal/metrics"
	"github.com/evyataryagoni/visitortrack/internal/models"
	"github.com/evyataryagoni/visitortrack/internal/store"
)

// TrackOutcome describes the result of a tracking call
type TrackOutcome int

const (
	// TrackRecorded means the visit was durably inserted or incremented
	TrackRecorded TrackOutcome = iota

	// TrackNotConfigured means no datastore is configured; the call was a
	// deliberate no-op, not a failure
	TrackNotConfigured
)

// TrackService is the ingestion core: it turns a raw page-view request
// into one durable visitor record write
//
// Flow:
//  1. Resolve identity (client address + 5-minute bucket key)
//  2. Enrich with best-effort geolocation (never fails, always attempted)
//  3. Upsert: insert with visits = 1, or increment the existing count
type TrackService struct {
	store   store.Store // nil when persistence is not configured
	locator geo.Locator
	metrics *metrics.Metrics
	logger  *logger.Logger

	// now is injected so bucket boundaries are testable.
	// Always UTC: the same instant buckets identically on every server.
	now func() time.Time
}

// NewTrackService creates a new tracking service
//
// Parameters:
//   - dataStore: any Store implementation, or nil for the no-op mode
//   - locator: the geolocation client
//   - m: metrics collector (optional, can be nil)
//   - log: logger (optional, can be nil)
func NewTrackService(dataStore store.Store, locator geo.Locator, m *metrics.Metrics, log *logger.Logger) *TrackService {
	if log == nil {
		log = logger.NewDefault()
	}
	return &TrackService{
		store:   dataStore,
		locator: locator,
		metrics: m,
		logger:  log.WithComponent("TrackService"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// RecordVisit processes one page-view signal.
//
// When persistence is not configured, the call short-circuits before the
// resolver, enrichment, or store are touched and reports the
// distinguishable TrackNotConfigured outcome. Store failures are the
// only errors that surface to the caller; enrichment failures are
// absorbed into default location values.
func (s *TrackService) RecordVisit(ctx context.Context, header http.Header) (TrackOutcome, error) {
	if s.store == nil {
		s.logger.Debug().Msg("Datastore not configured, skipping visit tracking")
		s.countVisit("not_configured")
		return TrackNotConfigured, nil
	}

	// Step 1: Resolve identity
	addr := identity.ClientAddr(header)
	bucket := identity.Bucket(s.now())
	key := identity.Key(addr, bucket)

	// Step 2: Enrich (always attempted; Lookup absorbs every failure)
	location := s.locator.Lookup(ctx, addr)

	// Step 3: Upsert - one atomic durable write
	record := &models.VisitorRecord{
		ID:         key,
		Country:    location.Country,
		State:      location.State,
		City:       location.City,
		Postal:     location.Postal,
		Longitude:  location.Longitude,
		Latitude:   location.Latitude,
		Visits:     1,
		BucketTime: bucket,
	}

	if err := s.store.RegisterVisit(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("visitor", key).Msg("Failed to register visit")
		s.countVisit("store_error")
		return TrackRecorded, err
	}

	s.logger.Info().
		Str("visitor", key).
		Str("country", location.Country).
		Str("city", location.City).
		Msg("Visit recorded")
	s.countVisit("recorded")

	return TrackRecorded, nil
}

// Close cleans up resources, closing the underlying store if present
func (s *TrackService) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

func (s *TrackService) countVisit(result string) {
	if s.metrics != nil {
		s.metrics.VisitsTracked.WithLabelValues(result).Inc()
	}
}
