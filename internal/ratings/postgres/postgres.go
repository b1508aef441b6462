package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"satisfaction/internal/core"
	"satisfaction/internal/ratings"
)

var _ ratings.Source = (*Source)(nil)

// Options configures the connection pool. Zero values keep pgx defaults.
type Options struct {
	MaxConns    int32
	ConnTimeout time.Duration
	// Table defaults to "ratings"; it must contain date and rate columns
	// plus an id column that defines source order.
	Table string
}

// Source reads ratings from PostgreSQL.
type Source struct {
	pool  *pgxpool.Pool
	table string
}

// New opens a pool and checks connectivity.
func New(ctx context.Context, url string, opts Options) (*Source, error) {
	if url == "" {
		return nil, errors.New("database url is required")
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.ConnTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = opts.ConnTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	table := opts.Table
	if table == "" {
		table = "ratings"
	}
	return &Source{pool: pool, table: table}, nil
}

func (s *Source) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Load implements ratings.Source. Both columns are read as text so that
// coercion stays in core.Transform whatever the column types are.
func (s *Source) Load(ctx context.Context) ([]core.RawRecord, error) {
	query := fmt.Sprintf(`SELECT date::text, rate::text FROM %s ORDER BY id`, pgx.Identifier{s.table}.Sanitize())
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.RawRecord, error) {
		var date, rate *string
		if err := row.Scan(&date, &rate); err != nil {
			return core.RawRecord{}, err
		}
		return core.RawRecord{Date: deref(date), Rate: deref(rate)}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect ratings: %w", err)
	}
	for i := range out {
		out[i].Index = i
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
