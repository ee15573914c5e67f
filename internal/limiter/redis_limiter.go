package limiter

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// allowScript increments the per-window counter and sets its expiry in
// one atomic unit on the Redis server, so concurrent instances cannot
// race the check.
const allowScript = `
	local key = KEYS[1]
	local ttl = tonumber(ARGV[1])

	local current = redis.call('INCR', key)

	if current == 1 then
		redis.call('EXPIRE', key, ttl)
	end

	return current
`

// RedisLimiter implements distributed rate limiting using Redis,
// for deployments where the limit must be shared across instances.
// Key format: "ratelimit:{addr}:{window}"
type RedisLimiter struct {
	client         *redis.Client
	requestsPerSec float64
	windowSize     time.Duration
}

// NewRedisLimiter creates a new Redis-based rate limiter
//
// Parameters:
//   - addr: Redis server address (e.g., "localhost:6379")
//   - password: Redis password (empty string if no password)
//   - db: Redis database number
//   - requestsPerSecond: allowed requests per second per client (can be fractional)
func NewRedisLimiter(addr, password string, db int, requestsPerSecond float64) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis for rate limiting: %w", err)
	}

	// Fractional rates get a proportionally longer window:
	// 0.2 req/s -> one 5-second window
	windowSize := time.Second
	if requestsPerSecond < 1.0 {
		windowSize = time.Duration(float64(time.Second) / requestsPerSecond)
	}

	return &RedisLimiter{
		client:         client,
		requestsPerSec: requestsPerSecond,
		windowSize:     windowSize,
	}, nil
}

// Allow checks if a request from the given client address should be allowed
func (rl *RedisLimiter) Allow(addr string) bool {
	ctx := context.Background()

	windowSeconds := int64(rl.windowSize.Seconds())
	window := time.Now().Unix() / windowSeconds
	key := fmt.Sprintf("ratelimit:%s:%d", addr, window)

	result, err := rl.client.Eval(ctx, allowScript, []string{key}, windowSeconds*2).Result()
	if err != nil {
		// Fail open on Redis errors rather than blocking legitimate traffic
		return true
	}

	count, ok := result.(int64)
	if !ok {
		return true
	}

	// Requests allowed per window, rounded up so fractional rates still
	// admit at least one request
	limit := int64(math.Ceil(rl.requestsPerSec * rl.windowSize.Seconds()))

	return count <= limit
}

// Close closes the Redis connection
func (rl *RedisLimiter) Close() error {
	if rl.client != nil {
		return rl.client.Close()
	}
	return nil
}
