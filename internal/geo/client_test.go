package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evyataryagoni/visitortrack/internal/models"
)

// newTestClient creates a client pointed at a stub provider
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	client := NewClient(server.URL, 2*time.Second, nil, nil)

	return client, server
}

// TestClient_Lookup_Success tests a fully populated provider response
func TestClient_Lookup_Success(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/8.8.8.8" {
			t.Errorf("unexpected provider path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"country": "United States",
			"regionName": "California",
			"city": "Mountain View",
			"zip": "94043",
			"lon": -122.0838,
			"lat": 37.386
		}`))
	})
	defer server.Close()

	location := client.Lookup(context.Background(), "8.8.8.8")

	if location.Country != "United States" {
		t.Errorf("expected country 'United States', got %q", location.Country)
	}
	if location.State != "California" {
		t.Errorf("expected state 'California', got %q", location.State)
	}
	if location.City != "Mountain View" {
		t.Errorf("expected city 'Mountain View', got %q", location.City)
	}
	if location.Postal != "94043" {
		t.Errorf("expected postal '94043', got %q", location.Postal)
	}
	if location.Longitude != -122.0838 {
		t.Errorf("expected longitude -122.0838, got %f", location.Longitude)
	}
	if location.Latitude != 37.386 {
		t.Errorf("expected latitude 37.386, got %f", location.Latitude)
	}
}

// TestClient_Lookup_PartialResponse tests per-field defaulting when the
// provider succeeds but omits some fields
func TestClient_Lookup_PartialResponse(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "country": "France", "lat": 48.8566}`))
	})
	defer server.Close()

	location := client.Lookup(context.Background(), "8.8.8.8")

	// Present fields kept
	if location.Country != "France" {
		t.Errorf("expected country 'France', got %q", location.Country)
	}
	if location.Latitude != 48.8566 {
		t.Errorf("expected latitude 48.8566, got %f", location.Latitude)
	}

	// Missing fields defaulted independently
	if location.State != models.NotFound {
		t.Errorf("expected default state, got %q", location.State)
	}
	if location.City != models.NotFound {
		t.Errorf("expected default city, got %q", location.City)
	}
	if location.Postal != models.NotFound {
		t.Errorf("expected default postal, got %q", location.Postal)
	}
	if location.Longitude != 0.0 {
		t.Errorf("expected default longitude 0.0, got %f", location.Longitude)
	}
}

// TestClient_Lookup_SentinelCoordinates tests coercion of non-numeric
// coordinate values to the 0.0 sentinel
func TestClient_Lookup_SentinelCoordinates(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "country": "Germany", "lon": "Not found", "lat": "52.52"}`))
	})
	defer server.Close()

	location := client.Lookup(context.Background(), "8.8.8.8")

	if location.Longitude != 0.0 {
		t.Errorf("expected sentinel longitude 0.0, got %f", location.Longitude)
	}
	// Numeric strings are still usable coordinates
	if location.Latitude != 52.52 {
		t.Errorf("expected latitude 52.52, got %f", location.Latitude)
	}
}

// TestClient_Lookup_ProviderFailureStatus tests the non-success status path
func TestClient_Lookup_ProviderFailureStatus(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "fail", "message": "private range"}`))
	})
	defer server.Close()

	location := client.Lookup(context.Background(), "192.168.1.1")

	if location != models.DefaultLocation() {
		t.Errorf("expected all-default location, got %+v", location)
	}
}

// TestClient_Lookup_ProviderError tests non-200 provider responses
func TestClient_Lookup_ProviderError(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	location := client.Lookup(context.Background(), "8.8.8.8")

	if location != models.DefaultLocation() {
		t.Errorf("expected all-default location, got %+v", location)
	}
}

// TestClient_Lookup_MalformedPayload tests undecodable provider bodies
func TestClient_Lookup_MalformedPayload(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "country":`))
	})
	defer server.Close()

	location := client.Lookup(context.Background(), "8.8.8.8")

	if location != models.DefaultLocation() {
		t.Errorf("expected all-default location, got %+v", location)
	}
}

// TestClient_Lookup_NetworkError tests an unreachable provider
func TestClient_Lookup_NetworkError(t *testing.T) {
	// Server closed before the lookup runs
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(server.URL, 2*time.Second, nil, nil)
	server.Close()

	location := client.Lookup(context.Background(), "8.8.8.8")

	if location != models.DefaultLocation() {
		t.Errorf("expected all-default location, got %+v", location)
	}
}

// TestClient_Lookup_InvalidAddress tests that no outbound call is made
// for addresses that are not valid IPs
func TestClient_Lookup_InvalidAddress(t *testing.T) {
	called := false
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	defer server.Close()

	location := client.Lookup(context.Background(), "not-an-ip")

	if called {
		t.Error("expected no provider call for an invalid address")
	}
	if location != models.DefaultLocation() {
		t.Errorf("expected all-default location, got %+v", location)
	}
}
