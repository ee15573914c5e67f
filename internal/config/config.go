package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Rate limiting
	RateLimitType   string // "memory" or "redis"
	RateLimit       int    // number of requests allowed
	RateLimitWindow int    // time window in seconds (default: 1)

	// Datastore configuration
	DatastoreType string // "mysql", "redis", or "memory"

	// MySQL configuration
	MySQLDSN string // Data Source Name

	// Redis configuration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Geolocation provider configuration
	GeoAPIURL         string // base URL of the ip-api-style provider
	GeoTimeoutSeconds int    // outbound lookup timeout
}

// Load reads configuration from environment variables
// with sensible defaults
func Load() *Config {
	// Load .env file if it exists (for local development)
	// In production/Docker, environment variables are set directly
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		// Server config with defaults
		Port: getEnv("PORT", "3000"),

		// Rate limiting (default: memory, 10 requests per 1 second)
		RateLimitType:   getEnv("RATE_LIMITER_TYPE", "memory"),
		RateLimit:       getEnvAsInt("RATE_LIMIT", 10),
		RateLimitWindow: getEnvAsInt("RATE_LIMIT_WINDOW", 1),

		// Datastore config
		DatastoreType: getEnv("DATASTORE_TYPE", "mysql"),

		// MySQL config
		// Format: user:password@tcp(host:port)/dbname?parseTime=true
		MySQLDSN: getEnv("MYSQL_DSN", ""),

		// Redis config
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Geolocation provider config
		GeoAPIURL:         getEnv("GEO_API_URL", "http://ip-api.com"),
		GeoTimeoutSeconds: getEnvAsInt("GEO_TIMEOUT_SECONDS", 5),
	}
}

// PersistenceConfigured reports whether the configured datastore has the
// settings it needs to actually open. When false, the tracking pipeline
// runs in its deliberate no-op mode instead of crashing at startup.
func (c *Config) PersistenceConfigured() bool {
	switch c.DatastoreType {
	case "mysql":
		return c.MySQLDSN != ""
	case "redis":
		return c.RedisAddr != ""
	case "memory":
		return true
	default:
		return false
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer
// Returns default if not set or invalid
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
