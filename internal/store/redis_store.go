package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/evyataryagoni/visitortrack/internal/models"
	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces visitor hashes in Redis
// Key format: visitor:<composite id>, value: hash of record fields
const keyPrefix = "visitor:"

// registerScript is the Lua script behind RegisterVisit.
// Running it as a script makes the insert-or-increment a single atomic
// unit on the Redis server: concurrent callers racing on the same key
// either create the hash once or increment it, never both.
const registerScript = `
	local key = KEYS[1]

	if redis.call('EXISTS', key) == 1 then
		return redis.call('HINCRBY', key, 'visits', 1)
	end

	redis.call('HSET', key,
		'country', ARGV[1],
		'state', ARGV[2],
		'city', ARGV[3],
		'postal', ARGV[4],
		'longitude', ARGV[5],
		'latitude', ARGV[6],
		'bucket_time', ARGV[7],
		'visits', 1)
	return 1
`

// RedisStore implements Store using Redis hashes
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store
//
// Parameters:
//   - addr: Redis server address (e.g., "localhost:6379")
//   - password: Redis password (empty string if no password)
//   - db: Redis database number (0-15, default is 0)
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// FindByID looks up a visitor record by its composite key
func (s *RedisStore) FindByID(ctx context.Context, id string) (*models.VisitorRecord, error) {
	fields, err := s.client.HGetAll(ctx, keyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("Redis query failed: %w", err)
	}
	if len(fields) == 0 {
		// HGETALL returns an empty map for missing keys, not redis.Nil
		return nil, ErrNotFound
	}

	return recordFromHash(id, fields), nil
}

// RegisterVisit performs the atomic insert-or-increment via Lua script
func (s *RedisStore) RegisterVisit(ctx context.Context, record *models.VisitorRecord) error {
	err := s.client.Eval(ctx, registerScript,
		[]string{keyPrefix + record.ID},
		record.Country,
		record.State,
		record.City,
		record.Postal,
		strconv.FormatFloat(record.Longitude, 'f', -1, 64),
		strconv.FormatFloat(record.Latitude, 'f', -1, 64),
		record.BucketTime.Format(time.RFC3339),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to register visit: %w", err)
	}

	return nil
}

// ScanAll reads every visitor record
func (s *RedisStore) ScanAll(ctx context.Context) ([]models.VisitorRecord, error) {
	keys, err := s.client.Keys(ctx, keyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan visitor keys: %w", err)
	}

	records := make([]models.VisitorRecord, 0, len(keys))
	for _, key := range keys {
		fields, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read visitor %s: %w", key, err)
		}
		if len(fields) == 0 {
			continue // expired/deleted between KEYS and HGETALL
		}
		records = append(records, *recordFromHash(key[len(keyPrefix):], fields))
	}

	return records, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// recordFromHash rebuilds a domain record from a Redis hash
func recordFromHash(id string, fields map[string]string) *models.VisitorRecord {
	longitude, _ := strconv.ParseFloat(fields["longitude"], 64)
	latitude, _ := strconv.ParseFloat(fields["latitude"], 64)
	visits, _ := strconv.ParseInt(fields["visits"], 10, 64)
	bucketTime, _ := time.Parse(time.RFC3339, fields["bucket_time"])

	return &models.VisitorRecord{
		ID:         id,
		Country:    fields["country"],
		State:      fields["state"],
		City:       fields["city"],
		Postal:     fields["postal"],
		Longitude:  longitude,
		Latitude:   latitude,
		Visits:     visits,
		BucketTime: bucketTime,
	}
}
