package store

import (
	"context"
	"sync"

	"github.com/evyataryagoni/visitortrack/internal/models"
)

// MemoryStore implements Store with an in-process map.
// Suitable for development and single-server setups without a database;
// data does not survive a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*models.VisitorRecord
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*models.VisitorRecord),
	}
}

// FindByID looks up a visitor record by its composite key
func (s *MemoryStore) FindByID(_ context.Context, id string) (*models.VisitorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.data[id]
	if !exists {
		return nil, ErrNotFound
	}

	// Copy so callers cannot mutate stored state
	clone := *record
	return &clone, nil
}

// RegisterVisit performs the insert-or-increment upsert.
// The mutex serializes writers to the same key, so concurrent calls
// never lose increments.
func (s *MemoryStore) RegisterVisit(_ context.Context, record *models.VisitorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, exists := s.data[record.ID]; exists {
		existing.Visits++
		return nil
	}

	clone := *record
	clone.Visits = 1
	s.data[record.ID] = &clone

	return nil
}

// ScanAll reads every visitor record
func (s *MemoryStore) ScanAll(_ context.Context) ([]models.VisitorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]models.VisitorRecord, 0, len(s.data))
	for _, record := range s.data {
		records = append(records, *record)
	}

	return records, nil
}

// Close cleans up resources
// Nothing to release for the in-memory implementation
func (s *MemoryStore) Close() error {
	return nil
}
