package store

import (
	"context"

	"github.com/evyataryagoni/visitortrack/internal/models"
)

// MockStore is a test double for the Store interface
// It allows tests to control behavior and verify interactions
type MockStore struct {
	// Data holds the mock records keyed by composite ID
	Data map[string]*models.VisitorRecord

	// Track method calls for verification in tests
	FindByIDCalls      []string
	RegisterVisitCalls []models.VisitorRecord
	ScanAllCalls       int
	CloseCalled        bool

	// Control behavior for error scenarios
	FindByIDError      error
	RegisterVisitError error
	ScanAllError       error
	CloseError         error
}

// NewMockStore creates an empty mock store
func NewMockStore() *MockStore {
	return &MockStore{
		Data:               map[string]*models.VisitorRecord{},
		FindByIDCalls:      []string{},
		RegisterVisitCalls: []models.VisitorRecord{},
	}
}

// FindByID implements the Store interface
// Tracks calls and returns configured data or errors
func (m *MockStore) FindByID(_ context.Context, id string) (*models.VisitorRecord, error) {
	m.FindByIDCalls = append(m.FindByIDCalls, id)

	if m.FindByIDError != nil {
		return nil, m.FindByIDError
	}

	record, exists := m.Data[id]
	if !exists {
		return nil, ErrNotFound
	}

	return record, nil
}

// RegisterVisit implements the Store interface with real
// insert-or-increment semantics so service tests can assert final counts
func (m *MockStore) RegisterVisit(_ context.Context, record *models.VisitorRecord) error {
	m.RegisterVisitCalls = append(m.RegisterVisitCalls, *record)

	if m.RegisterVisitError != nil {
		return m.RegisterVisitError
	}

	if existing, exists := m.Data[record.ID]; exists {
		existing.Visits++
		return nil
	}

	clone := *record
	clone.Visits = 1
	m.Data[record.ID] = &clone

	return nil
}

// ScanAll implements the Store interface
func (m *MockStore) ScanAll(_ context.Context) ([]models.VisitorRecord, error) {
	m.ScanAllCalls++

	if m.ScanAllError != nil {
		return nil, m.ScanAllError
	}

	records := make([]models.VisitorRecord, 0, len(m.Data))
	for _, record := range m.Data {
		records = append(records, *record)
	}

	return records, nil
}

// Close implements the Store interface
func (m *MockStore) Close() error {
	m.CloseCalled = true
	return m.CloseError
}
