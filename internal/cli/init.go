// Package cli holds the start-up steps shared by the satisfaction commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"

	"satisfaction/internal/backend"
	"satisfaction/internal/config"
	"satisfaction/internal/core"
	"satisfaction/internal/log"
	"satisfaction/internal/ratings/jsonfile"
	"satisfaction/internal/storage"
)

// SetupLogger builds the application logger from config and makes it the
// slog default.
func SetupLogger(cfg *config.Config) *log.Logger {
	lc := log.DefaultConfig()
	if cfg != nil {
		lc.Level = log.ParseLevel(cfg.LogLevel)
		lc.Format = cfg.LogFormat
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads a .env file for local development. With an empty path
// a missing ./.env is not an error; an explicit path must exist.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadTable reads every rating from the configured source and derives the
// table. Any bad row aborts start-up.
func LoadTable(ctx context.Context, cfg *config.Config, logger *log.Logger) (core.Table, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return core.Table{}, err
	}
	logger = logger.WithComponent(log.ComponentLoader)

	src, err := backend.NewFactory(logger.Logger).CreateSource(ctx, bcfg)
	if err != nil {
		return core.Table{}, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			logger.Warn("Failed to close rating source", log.FieldError, cerr.Error())
		}
	}()

	raw, err := src.Source.Load(ctx)
	if err != nil {
		return core.Table{}, fmt.Errorf("load ratings from %s: %w", src.Type, err)
	}

	tlog := logger.WithComponent(log.ComponentTransform)
	table, err := core.Transform(raw)
	if err != nil {
		tlog.Error("Failed to derive rating fields",
			log.FieldOperation, log.OpDerive,
			log.FieldRecords, len(raw),
			log.FieldError, err.Error())
		return core.Table{}, fmt.Errorf("transform ratings: %w", err)
	}
	tlog.Debug("Derived rating fields",
		log.FieldOperation, log.OpDerive,
		log.FieldRecords, table.Len())

	logger.Info("Ratings loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldBackend, src.Type.String(),
		log.FieldRecords, table.Len(),
		log.FieldYears, table.Years(),
		log.FieldMonths, table.Months())
	return table, nil
}

// ImportJSON copies a JSON ratings file into the SQLite database at dbPath.
// Rows are checked with core.Transform first so nothing invalid is stored.
func ImportJSON(ctx context.Context, jsonPath, dbPath string, replace bool) (int, error) {
	raw, err := jsonfile.New(jsonPath).Load(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := core.Transform(raw); err != nil {
		return 0, fmt.Errorf("refusing to import %s: %w", jsonPath, err)
	}

	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return 0, fmt.Errorf("open sqlite database: %w", err)
	}
	defer repo.Close()

	return repo.Import(ctx, raw, replace)
}
