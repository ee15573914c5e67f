package identity

import (
	"net/http"
	"testing"
	"time"
)

// TestClientAddr_HeaderPriority tests the address resolution order
func TestClientAddr_HeaderPriority(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{
			name:     "forwarded-for wins over everything",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.5", "CF-Connecting-IP": "198.51.100.1", "X-Real-IP": "192.0.2.1"},
			expected: "203.0.113.5",
		},
		{
			name:     "forwarded-for takes first entry trimmed",
			headers:  map[string]string{"X-Forwarded-For": " 203.0.113.5 , 10.0.0.1, 10.0.0.2"},
			expected: "203.0.113.5",
		},
		{
			name:     "cf-connecting-ip beats x-real-ip",
			headers:  map[string]string{"CF-Connecting-IP": "198.51.100.1", "X-Real-IP": "192.0.2.1"},
			expected: "198.51.100.1",
		},
		{
			name:     "x-real-ip as last header",
			headers:  map[string]string{"X-Real-IP": "192.0.2.1"},
			expected: "192.0.2.1",
		},
		{
			name:     "no headers falls back to loopback",
			headers:  map[string]string{},
			expected: "127.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			for k, v := range tt.headers {
				header.Set(k, v)
			}

			addr := ClientAddr(header)

			if addr != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, addr)
			}
		})
	}
}

// TestBucket_Truncation tests 5-minute truncation
func TestBucket_Truncation(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			name:     "mid-window rounds down",
			input:    time.Date(2025, 6, 15, 10, 2, 30, 500, time.UTC),
			expected: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "exact boundary stays",
			input:    time.Date(2025, 6, 15, 10, 5, 0, 0, time.UTC),
			expected: time.Date(2025, 6, 15, 10, 5, 0, 0, time.UTC),
		},
		{
			name:     "seconds discarded on boundary minute",
			input:    time.Date(2025, 6, 15, 10, 5, 59, 0, time.UTC),
			expected: time.Date(2025, 6, 15, 10, 5, 0, 0, time.UTC),
		},
		{
			name:     "end of hour",
			input:    time.Date(2025, 6, 15, 10, 59, 1, 0, time.UTC),
			expected: time.Date(2025, 6, 15, 10, 55, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bucket(tt.input)

			if !got.Equal(tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

// TestKey_StableWithinWindow tests that all times inside one window
// produce the identical key
func TestKey_StableWithinWindow(t *testing.T) {
	addr := "203.0.113.5"
	t1 := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 15, 10, 4, 59, 0, time.UTC)

	if Key(addr, t1) != Key(addr, t2) {
		t.Errorf("keys within the same window differ: %q vs %q", Key(addr, t1), Key(addr, t2))
	}
}

// TestKey_DiffersAcrossWindows tests that crossing a bucket boundary
// always produces a distinct key
func TestKey_DiffersAcrossWindows(t *testing.T) {
	addr := "203.0.113.5"
	t1 := time.Date(2025, 6, 15, 10, 4, 59, 0, time.UTC)
	t2 := time.Date(2025, 6, 15, 10, 5, 0, 0, time.UTC)

	if Key(addr, t1) == Key(addr, t2) {
		t.Errorf("keys across a window boundary should differ, both were %q", Key(addr, t1))
	}
}

// TestKey_Format tests the exact composite key format
func TestKey_Format(t *testing.T) {
	tests := []struct {
		name     string
		addr     string
		time     time.Time
		expected string
	}{
		{
			name:     "morning",
			addr:     "203.0.113.5",
			time:     time.Date(2025, 6, 15, 10, 2, 0, 0, time.UTC),
			expected: "203.0.113.5-2025/06/15 10:00AM",
		},
		{
			name:     "afternoon",
			addr:     "198.51.100.1",
			time:     time.Date(2025, 1, 3, 15, 47, 12, 0, time.UTC),
			expected: "198.51.100.1-2025/01/03 03:45PM",
		},
		{
			name:     "midnight",
			addr:     "127.0.0.1",
			time:     time.Date(2025, 12, 31, 0, 1, 0, 0, time.UTC),
			expected: "127.0.0.1-2025/12/31 12:00AM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Key(tt.addr, tt.time)

			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestKey_LongActiveAddress tests one key per window for an address
// active across several windows
func TestKey_LongActiveAddress(t *testing.T) {
	addr := "203.0.113.5"
	start := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	seen := map[string]bool{}
	for i := 0; i < 60; i++ { // one hit per minute for an hour
		seen[Key(addr, start.Add(time.Duration(i)*time.Minute))] = true
	}

	if len(seen) != 12 {
		t.Errorf("expected 12 distinct keys over one hour, got %d", len(seen))
	}
}

// TestDateFromKey tests date recovery from the composite key
func TestDateFromKey(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		expected   string
		expectedOK bool
	}{
		{"valid key", "203.0.113.5-2025/06/15 10:00AM", "2025/06/15", true},
		{"no separator", "garbage", "", false},
		{"unparseable date", "203.0.113.5-notadate 10:00AM", "", false},
		{"empty date segment", "203.0.113.5-", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, ok := DateFromKey(tt.key)

			if ok != tt.expectedOK {
				t.Fatalf("expected ok=%v, got %v", tt.expectedOK, ok)
			}
			if date != tt.expected {
				t.Errorf("expected date %q, got %q", tt.expected, date)
			}
		})
	}
}
