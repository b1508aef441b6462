package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"satisfaction/internal/core"
	"satisfaction/internal/ratings"

	_ "modernc.org/sqlite"
)

var _ ratings.Source = (*SQLiteRepository)(nil)

// SQLiteRepository reads and imports rating rows kept in a SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements ratings.Source. Rows come back in insertion order.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.RawRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date, rate FROM ratings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var out []core.RawRecord
	for rows.Next() {
		rec := core.RawRecord{Index: len(out)}
		if err := rows.Scan(&rec.Date, &rec.Rate); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return out, nil
}

// Import appends rows in one transaction. With replace set, existing rows
// are removed first so the table mirrors the imported file.
func (r *SQLiteRepository) Import(ctx context.Context, recs []core.RawRecord, replace bool) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM ratings`); err != nil {
			return 0, fmt.Errorf("clear ratings: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO ratings (date, rate) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, rec.Date, rec.Rate); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", rec.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Ratings imported into SQLite", "rows", len(recs), "replace", replace)
	return len(recs), nil
}
