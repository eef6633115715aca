// Package cli provides common initialization for the studiodesk binaries.
// The server and the mirror worker share environment loading, configuration
// and storage setup; only their run loops differ.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"studiodesk/internal/config"
	"studiodesk/internal/log"
	"studiodesk/internal/storage"
)

// Bootstrap loads the environment, configuration and logger in the order
// they depend on each other: .env first, then config, then a logger at the
// configured level. Validation failures end the process.
func Bootstrap(component string) (*config.Config, *log.Logger) {
	// Errors are ignored silently; the .env file is optional in production.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: component,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	return cfg, logger
}

// InitSQLite initializes a SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}
