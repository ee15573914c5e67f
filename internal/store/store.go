package store

import (
	"context"
	"errors"

	"github.com/evyataryagoni/visitortrack/internal/models"
)

// ErrNotFound is returned by FindByID when no record exists for the key.
var ErrNotFound = errors.New("visitor not found")

// Store defines the interface for visitor record persistence
// Allows multiple implementations (MySQL, Redis, in-memory) and easy
// testing with mocks
type Store interface {
	// FindByID looks up a visitor record by its composite key
	// Returns ErrNotFound when the key has never been recorded
	FindByID(ctx context.Context, id string) (*models.VisitorRecord, error)

	// RegisterVisit performs the insert-or-increment upsert: a new key is
	// inserted with the record's fields and visits = 1, an existing key
	// has only its visit count incremented by 1 (enrichment fields are
	// immutable after first insert). Implementations must be atomic under
	// concurrent writers to the same key.
	RegisterVisit(ctx context.Context, record *models.VisitorRecord) error

	// ScanAll reads the entire record set in one pass
	ScanAll(ctx context.Context) ([]models.VisitorRecord, error)

	// Close cleans up resources (database connections, etc.)
	Close() error
}
