package main

import (
	"github.com/evyataryagoni/visitortrack/internal/config"
	"github.com/evyataryagoni/visitortrack/internal/logger"
	"github.com/evyataryagoni/visitortrack/internal/store"
)

// Creates or updates the visitors table schema.
// Run once before first deploy and after schema changes:
//
//	MYSQL_DSN="user:pass@tcp(host:3306)/db?parseTime=true" go run ./cmd/migrate
func main() {
	appConfig := config.Load()
	log := logger.NewDefault().WithComponent("migrate")

	if appConfig.MySQLDSN == "" {
		log.Fatal().Msg("MYSQL_DSN is required for migration")
	}

	mysqlStore, err := store.NewMySQLStore(appConfig.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MySQL")
	}
	defer mysqlStore.Close()

	if err := mysqlStore.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	log.Info().Msg("Visitors table migrated")
}
