package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/evyataryagoni/visitortrack/internal/config"
	"github.com/evyataryagoni/visitortrack/internal/geo"
	"github.com/evyataryagoni/visitortrack/internal/handler"
	"github.com/evyataryagoni/visitortrack/internal/limiter"
	"github.com/evyataryagoni/visitortrack/internal/logger"
	"github.com/evyataryagoni/visitortrack/internal/metrics"
	"github.com/evyataryagoni/visitortrack/internal/router"
	"github.com/evyataryagoni/visitortrack/internal/service"
	"github.com/evyataryagoni/visitortrack/internal/store"
)

func main() {
	// Load configuration
	appConfig := config.Load()

	// Initialize components
	appLogger := setupLogger(appConfig)
	dataStore := setupDataStore(appConfig, appLogger)

	rateLimiter := setupRateLimiter(appConfig, appLogger)
	defer rateLimiter.Close()

	metricsCollector := setupMetrics(appLogger)

	// Build application layers
	geoClient := geo.NewClient(
		appConfig.GeoAPIURL,
		time.Duration(appConfig.GeoTimeoutSeconds)*time.Second,
		metricsCollector,
		appLogger,
	)

	trackService := service.NewTrackService(dataStore, geoClient, metricsCollector, appLogger)
	defer trackService.Close()

	statsService := service.NewStatsService(dataStore, metricsCollector, appLogger)

	trackHandler := handler.NewTrackHandler(trackService)
	statsHandler := handler.NewStatsHandler(statsService)
	appRouter := router.SetupRouter(trackHandler, statsHandler, rateLimiter, metricsCollector, appLogger)

	// Start server
	startServer(appConfig, appRouter, appLogger)
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:  "info",
		Pretty: true,
	})

	appLogger.Info().Msg("Starting visitor tracking server...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Str("rate_limiter_type", appConfig.RateLimitType).
		Int("rate_limit", appConfig.RateLimit).
		Int("rate_limit_window", appConfig.RateLimitWindow).
		Str("datastore_type", appConfig.DatastoreType).
		Str("geo_api_url", appConfig.GeoAPIURL).
		Msg("Configuration loaded")

	return appLogger
}

// setupDataStore initializes the data store based on configuration
// Supports MySQL, Redis, and in-memory backends. Missing persistence
// configuration returns nil: the services then run in their deliberate
// no-op / empty-stats mode instead of crashing.
func setupDataStore(appConfig *config.Config, log *logger.Logger) store.Store {
	if !appConfig.PersistenceConfigured() {
		log.Warn().
			Str("type", appConfig.DatastoreType).
			Msg("Datastore not configured, visit tracking disabled")
		return nil
	}

	switch appConfig.DatastoreType {
	case "mysql":
		dataStore, err := store.NewMySQLStore(appConfig.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize MySQL store")
		}
		fmt.Println("✅ MySQL store initialized")
		return dataStore

	case "redis":
		dataStore, err := store.NewRedisStore(appConfig.RedisAddr, appConfig.RedisPassword, appConfig.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Redis store")
		}
		fmt.Println("✅ Redis store initialized")
		return dataStore

	case "memory":
		fmt.Println("✅ In-memory store initialized (data will not survive restarts)")
		return store.NewMemoryStore()

	default:
		log.Fatal().Str("type", appConfig.DatastoreType).Msg("Unknown datastore type")
		return nil
	}
}

// setupRateLimiter initializes the rate limiter
// Supports in-memory and Redis-based rate limiting
func setupRateLimiter(appConfig *config.Config, log *logger.Logger) limiter.Limiter {
	// Effective rate: requests per second
	// Example: 10 requests per 5 seconds = 10/5 = 2.0 req/s
	effectiveRate := float64(appConfig.RateLimit) / float64(appConfig.RateLimitWindow)

	rateLimiter, err := limiter.NewLimiter(limiter.LimiterConfig{
		Type:              appConfig.RateLimitType,
		RequestsPerSecond: effectiveRate,
		RedisAddr:         appConfig.RedisAddr,
		RedisPassword:     appConfig.RedisPassword,
		RedisDB:           appConfig.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rate limiter")
	}

	fmt.Printf("✅ Rate limiter initialized (type: %s, limit: %d req per %d sec = %.2f req/s)\n",
		appConfig.RateLimitType, appConfig.RateLimit, appConfig.RateLimitWindow, effectiveRate)

	return rateLimiter
}

// setupMetrics initializes the Prometheus metrics collector
func setupMetrics(log *logger.Logger) *metrics.Metrics {
	metricsCollector := metrics.New()
	log.Info().Msg("Metrics initialized")
	return metricsCollector
}

// startServer starts the HTTP server and blocks
func startServer(appConfig *config.Config, appRouter http.Handler, log *logger.Logger) {
	serverAddr := ":" + appConfig.Port

	log.Info().
		Str("port", appConfig.Port).
		Str("track_endpoint", "http://localhost:"+appConfig.Port+"/v1/track").
		Str("stats_endpoint", "http://localhost:"+appConfig.Port+"/v1/visitors").
		Str("health_check", "http://localhost:"+appConfig.Port+"/health").
		Str("metrics", "http://localhost:"+appConfig.Port+"/metrics").
		Msg("Server is running")

	log.Fatal().Err(http.ListenAndServe(serverAddr, appRouter)).Msg("Server failed")
}
