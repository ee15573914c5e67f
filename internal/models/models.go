package models

import "time"

// NotFound is the sentinel value stored for any location field the
// geolocation provider could not resolve. It is meaningful data, not an
// error marker: aggregation counts it as "unresolved" rather than failing.
const NotFound = "Not found"

// VisitorRecord is the sole persisted entity of the pipeline.
// One record exists per (client address, 5-minute bucket) pair; the
// composite ID encodes both, and Visits counts repeat hits inside the
// bucket. BucketTime carries the bucket as a structured timestamp so
// aggregation never has to re-parse the display-formatted ID.
type VisitorRecord struct {
	ID        string  `json:"id"`        // "{address}-{formatted bucket}", primary key
	Country   string  `json:"country"`   // "Not found" when unresolved
	State     string  `json:"state"`     // region/state name
	City      string  `json:"city"`      // city name
	Postal    string  `json:"postal"`    // postal/zip code
	Longitude float64 `json:"longitude"` // 0.0 when unresolved
	Latitude  float64 `json:"latitude"`  // 0.0 when unresolved
	Visits    int64   `json:"visits"`    // >= 1, increments by exactly 1 per repeat hit

	BucketTime time.Time `json:"-"` // truncated bucket timestamp (UTC)
}

// Location holds the enrichment fields for a client address.
// Every field is already defaulted by the enrichment client, so
// downstream code never needs its own fallback branches.
type Location struct {
	Country   string
	State     string
	City      string
	Postal    string
	Longitude float64
	Latitude  float64
}

// DefaultLocation returns the all-default Location used whenever
// enrichment fails. This is the single defaulting policy for the
// pipeline - do not re-derive these values at call sites.
func DefaultLocation() Location {
	return Location{
		Country:   NotFound,
		State:     NotFound,
		City:      NotFound,
		Postal:    NotFound,
		Longitude: 0.0,
		Latitude:  0.0,
	}
}

// VisitorStats is the aggregate payload served to the dashboard.
type VisitorStats struct {
	TotalVisits    int64            `json:"totalVisits"`    // sum of Visits over all records
	UniqueVisitors int              `json:"uniqueVisitors"` // number of records (address+bucket identities)
	Countries      int              `json:"countries"`      // distinct countries, excluding "Not found"
	VisitsByDate   map[string]int64 `json:"visitsByDate"`   // "2006/01/02" -> visit sum
	Visitors       []VisitorRecord  `json:"visitors"`       // full record list for the map widget

	// Message distinguishes "not configured" from "temporarily
	// unavailable" when the stats are empty; empty on the happy path.
	Message string `json:"message,omitempty"`
}

// EmptyStats returns a structurally valid all-zero VisitorStats.
// Aggregation falls back to this on any store failure so the dashboard
// renders zeros instead of crashing.
func EmptyStats(message string) *VisitorStats {
	return &VisitorStats{
		VisitsByDate: map[string]int64{},
		Visitors:     []VisitorRecord{},
		Message:      message,
	}
}

// TrackResponse is the payload returned by the track endpoint.
type TrackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"` // set for the "not configured" outcome
	Error   string `json:"error,omitempty"`   // set on ingestion failure
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
}
