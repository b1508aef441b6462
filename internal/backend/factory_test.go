package backend

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satisfaction/internal/config"
	"satisfaction/internal/core"
	"satisfaction/internal/ratings/jsonfile"
	"satisfaction/internal/ratings/memory"
	"satisfaction/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBackendType_IsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		assert.True(t, bt.IsValid(), bt.String())
	}
	assert.False(t, BackendType("csv").IsValid())
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "csv"})
	require.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sheets", GoogleSpreadsheetID: "abc", GoogleSheetRange: "R!A:B"})
	require.NoError(t, err)
	assert.Equal(t, SheetsBackend, cfg.Type)
	assert.Equal(t, "abc", cfg.GoogleSpreadsheetID)
	assert.Equal(t, "R!A:B", cfg.GoogleSheetRange)
	assert.Equal(t, "data", cfg.DataDirectory)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"json ok", Config{Type: JSONBackend, DataFile: "data.json"}, false},
		{"json without file", Config{Type: JSONBackend}, true},
		{"memory ok", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"postgres without url", Config{Type: PostgresBackend}, true},
		{"sheets without id", Config{Type: SheetsBackend}, true},
		{"unknown", Config{Type: "csv"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateSource_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"date":"2024-01-01","rate":2}]`), 0o600))

	res, err := NewFactory(quietLogger()).CreateSource(context.Background(), Config{Type: JSONBackend, DataFile: path})
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, JSONBackend, res.Type)
	assert.IsType(t, &jsonfile.Source{}, res.Source)

	rows, err := res.Source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.RawRecord{{Index: 0, Date: "2024-01-01", Rate: "2"}}, rows)
}

func TestCreateSource_Memory(t *testing.T) {
	res, err := NewFactory(nil).CreateSource(context.Background(), Config{Type: MemoryBackend, DataDirectory: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, res.Source)
	assert.Nil(t, res.Cleanup)
	assert.NoError(t, res.Close())
}

func TestCreateSource_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ratings.db")
	res, err := NewFactory(quietLogger()).CreateSource(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: dbPath})
	require.NoError(t, err)
	require.NotNil(t, res.Cleanup)
	defer res.Close()

	assert.IsType(t, &storage.SQLiteRepository{}, res.Source)
	rows, err := res.Source.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCreateSource_InvalidConfig(t *testing.T) {
	_, err := NewFactory(quietLogger()).CreateSource(context.Background(), Config{Type: PostgresBackend})
	require.Error(t, err)
}
