package identity

import (
	"net/http"
	"strings"
	"time"
)

// BucketLayout is the fixed, locale-stable format of the 5-minute bucket
// timestamp embedded in every visitor key. Changing it would orphan all
// previously stored records.
const BucketLayout = "2006/01/02 03:04PM"

// FallbackAddr is used when no identity header is present, so tracking
// never hard-fails on a missing header.
const FallbackAddr = "127.0.0.1"

// ClientAddr extracts the client address from proxy headers.
//
// Resolution order (first present wins):
//  1. X-Forwarded-For - first comma-separated entry, trimmed
//  2. CF-Connecting-IP
//  3. X-Real-IP
//  4. loopback fallback
//
// X-Forwarded-For is trusted first so edge-proxied deployments attribute
// visits to the real client rather than the proxy.
func ClientAddr(header http.Header) string {
	if forwardedFor := header.Get("X-Forwarded-For"); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
	}

	if cfIP := header.Get("CF-Connecting-IP"); cfIP != "" {
		return cfIP
	}

	if realIP := header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	return FallbackAddr
}

// Bucket truncates t down to the nearest lower multiple of 5 minutes,
// discarding seconds and sub-second precision. The truncation is done on
// the wall-clock minute so it holds in any location, including zones
// whose UTC offset is not a multiple of 5 minutes.
func Bucket(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()-t.Minute()%5, 0, 0, t.Location())
}

// Key builds the composite visitor identity for an address at time t.
// Two calls with the same address inside one 5-minute window always
// produce an identical key; calls across a window boundary never do.
func Key(addr string, t time.Time) string {
	return addr + "-" + Bucket(t).Format(BucketLayout)
}

// DateFromKey recovers the calendar date portion ("2006/01/02") of the
// bucket timestamp embedded in a visitor key. It exists only as a
// fallback for records persisted without a structured bucket time; the
// second return is false when the key does not carry a parseable date.
func DateFromKey(key string) (string, bool) {
	_, rest, found := strings.Cut(key, "-")
	if !found {
		return "", false
	}

	date, _, _ := strings.Cut(rest, " ")
	if _, err := time.Parse("2006/01/02", date); err != nil {
		return "", false
	}

	return date, true
}
