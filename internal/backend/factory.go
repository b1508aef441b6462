package backend

import (
	"context"
	"fmt"
	"log/slog"

	"satisfaction/internal/ratings/google"
	"satisfaction/internal/ratings/jsonfile"
	"satisfaction/internal/ratings/memory"
	"satisfaction/internal/ratings/postgres"
	"satisfaction/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new source factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateSource implements Factory.CreateSource
func (f *DefaultFactory) CreateSource(ctx context.Context, config Config) (*SourceResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *SourceResult
		err error
	)
	switch config.Type {
	case JSONBackend:
		res = f.createJSONSource(config)
	case MemoryBackend:
		res = f.createMemorySource(config)
	case SQLiteBackend:
		res, err = f.createSQLiteSource(config)
	case PostgresBackend:
		res, err = f.createPostgresSource(ctx, config)
	case SheetsBackend:
		res, err = f.createSheetsSource(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}
	res.Type = config.Type
	return res, nil
}

func (f *DefaultFactory) createJSONSource(config Config) *SourceResult {
	f.logger.Info("Initialized JSON file source", "path", config.DataFile)
	return &SourceResult{Source: jsonfile.New(config.DataFile)}
}

func (f *DefaultFactory) createMemorySource(config Config) *SourceResult {
	store := memory.NewFromDir(config.DataDirectory)
	f.logger.Info("Initialized memory source", "data_directory", config.DataDirectory)
	return &SourceResult{Source: store}
}

func (f *DefaultFactory) createSQLiteSource(config Config) (*SourceResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite source", "db_path", config.SQLiteDBPath)
	return &SourceResult{Source: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createPostgresSource(ctx context.Context, config Config) (*SourceResult, error) {
	src, err := postgres.New(ctx, config.DatabaseURL, postgres.Options{MaxConns: 4})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL source: %w", err)
	}
	f.logger.Info("Initialized PostgreSQL source")
	return &SourceResult{
		Source: src,
		Cleanup: func() error {
			src.Close()
			return nil
		},
	}, nil
}

func (f *DefaultFactory) createSheetsSource(ctx context.Context, config Config) (*SourceResult, error) {
	cli, err := google.New(ctx, google.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		Range:           config.GoogleSheetRange,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
		OAuth: google.OAuthConfig{
			ClientJSON: config.GoogleOAuthClientJSON,
			ClientFile: config.GoogleOAuthClientFile,
			TokenJSON:  config.GoogleOAuthTokenJSON,
			TokenFile:  config.GoogleOAuthTokenFile,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets source", "spreadsheet_id", config.GoogleSpreadsheetID)
	return &SourceResult{Source: cli}, nil
}
