package limiter

import (
	"sync"
	"time"
)

// Limiter is the interface that all rate limiters must implement
// Allows swapping between in-memory and Redis implementations
type Limiter interface {
	// Allow checks if a request from the given client address should be
	// allowed; false means rate limited
	Allow(addr string) bool

	// Close cleans up any resources (Redis connections, etc.)
	Close() error
}

// tokenBucket holds the per-client state for the token bucket algorithm:
// tokens refill at a fixed rate, each request consumes one, an empty
// bucket rejects.
type tokenBucket struct {
	tokens         float64
	capacity       float64
	refillRate     float64 // tokens per second
	lastRefillTime time.Time
	mu             sync.Mutex
}

func newTokenBucket(rate, capacity float64) *tokenBucket {
	// Start with at least 1 token so the first request always passes,
	// even for fractional rates where capacity < 1
	initialTokens := capacity
	if initialTokens < 1.0 {
		initialTokens = 1.0
	}

	return &tokenBucket{
		tokens:         initialTokens,
		capacity:       max(capacity, 1.0),
		refillRate:     rate,
		lastRefillTime: time.Now(),
	}
}

func (tb *tokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}

	return false
}

// refill adds tokens based on time elapsed; must hold mu
func (tb *tokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefillTime).Seconds()

	tb.tokens = min(tb.tokens+elapsed*tb.refillRate, tb.capacity)
	tb.lastRefillTime = now
}

// MemoryLimiter manages token buckets per client address.
// Thread-safe; suitable for single-server deployments.
type MemoryLimiter struct {
	buckets     sync.Map // map[string]*tokenBucket
	rate        float64
	capacity    float64
	cleanupMu   sync.Mutex
	lastCleanup time.Time
}

// NewMemoryLimiter creates a new in-memory rate limiter allowing
// requestsPerSecond per client address (fractional rates are valid)
func NewMemoryLimiter(requestsPerSecond float64) *MemoryLimiter {
	return &MemoryLimiter{
		rate:        requestsPerSecond,
		capacity:    requestsPerSecond, // burst up to one second's worth
		lastCleanup: time.Now(),
	}
}

// Allow checks if a request from the given address should be allowed
func (rl *MemoryLimiter) Allow(addr string) bool {
	bucket := rl.getBucket(addr)
	allowed := bucket.allow()

	rl.maybeCleanup()

	return allowed
}

func (rl *MemoryLimiter) getBucket(addr string) *tokenBucket {
	if value, ok := rl.buckets.Load(addr); ok {
		return value.(*tokenBucket)
	}

	bucket := newTokenBucket(rl.rate, rl.capacity)
	actual, _ := rl.buckets.LoadOrStore(addr, bucket)
	return actual.(*tokenBucket)
}

// maybeCleanup periodically drops buckets idle for 5+ minutes so the
// per-address map cannot grow without bound
func (rl *MemoryLimiter) maybeCleanup() {
	rl.cleanupMu.Lock()
	defer rl.cleanupMu.Unlock()

	if time.Since(rl.lastCleanup) < 5*time.Minute {
		return
	}

	threshold := time.Now().Add(-5 * time.Minute)

	rl.buckets.Range(func(key, value interface{}) bool {
		bucket := value.(*tokenBucket)
		bucket.mu.Lock()
		lastAccess := bucket.lastRefillTime
		bucket.mu.Unlock()

		if lastAccess.Before(threshold) {
			rl.buckets.Delete(key)
		}

		return true
	})

	rl.lastCleanup = time.Now()
}

// Close satisfies the Limiter interface; nothing to release in memory
func (rl *MemoryLimiter) Close() error {
	return nil
}
