package geo

import (
	"context"

	"github.com/evyataryagoni/visitortrack/internal/models"
)

// MockLocator is a test double for the Locator interface
// It allows tests to control the returned location and verify interactions
type MockLocator struct {
	// Result is returned from every Lookup call
	Result models.Location

	// Track method calls for verification in tests
	LookupCalls []string
}

// NewMockLocator creates a mock locator that returns the given location
func NewMockLocator(result models.Location) *MockLocator {
	return &MockLocator{
		Result:      result,
		LookupCalls: []string{},
	}
}

// NewFailingMockLocator creates a mock locator that behaves like a
// provider outage: every lookup resolves to the all-default location
func NewFailingMockLocator() *MockLocator {
	return NewMockLocator(models.DefaultLocation())
}

// Lookup implements the Locator interface
// Tracks calls and returns the configured location
func (m *MockLocator) Lookup(_ context.Context, addr string) models.Location {
	m.LookupCalls = append(m.LookupCalls, addr)
	return m.Result
}
