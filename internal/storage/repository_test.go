package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satisfaction/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "ratings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepository_EmptyTable(t *testing.T) {
	repo := newTestRepo(t)

	recs, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSQLiteRepository_ImportAndLoad(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Import(ctx, []core.RawRecord{
		{Index: 0, Date: "2024-02-05", Rate: "4"},
		{Index: 1, Date: "2024-01-10", Rate: "2"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	recs, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.RawRecord{
		{Index: 0, Date: "2024-02-05", Rate: "4"},
		{Index: 1, Date: "2024-01-10", Rate: "2"},
	}, recs)

	_, err = repo.Import(ctx, []core.RawRecord{{Index: 0, Date: "2024-03-01", Rate: "3"}}, false)
	require.NoError(t, err)
	recs, _ = repo.Load(ctx)
	assert.Len(t, recs, 3, "import without replace appends")

	_, err = repo.Import(ctx, []core.RawRecord{{Index: 0, Date: "2024-03-01", Rate: "3"}}, true)
	require.NoError(t, err)
	recs, _ = repo.Load(ctx)
	assert.Equal(t, []core.RawRecord{{Index: 0, Date: "2024-03-01", Rate: "3"}}, recs)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratings.db")
	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path))
}
