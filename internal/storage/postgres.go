package storage

import (
	"context"
	"errors"
	"fmt"

	"mux-livestream/internal/livestream"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool creates a pgx connection pool for PostgreSQL.
func NewPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is empty")
	}
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PostgresStore is a livestream.Store backed by a PostgreSQL table.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresStore returns a store over the prefixed table reachable via pool.
func NewPostgresStore(pool *pgxpool.Pool, prefix string) (*PostgresStore, error) {
	table, err := TableName(prefix)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

// CreateTable creates the stream table if missing.
func (s *PostgresStore) CreateTable(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createTableSQL(s.table)); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// DropTable removes the stream table and every record in it.
func (s *PostgresStore) DropTable(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, dropTableSQL(s.table)); err != nil {
		return fmt.Errorf("drop table %s: %w", s.table, err)
	}
	return nil
}

// Upsert implements livestream.Store.
func (s *PostgresStore) Upsert(ctx context.Context, rec livestream.StreamRecord) error {
	q := fmt.Sprintf(`INSERT INTO %s (stream_id, playback_id, is_live) VALUES ($1, $2, $3)
ON CONFLICT (stream_id) DO UPDATE SET playback_id = EXCLUDED.playback_id, is_live = EXCLUDED.is_live`, s.table)
	if _, err := s.pool.Exec(ctx, q, rec.StreamID, rec.PlaybackID, rec.IsLive); err != nil {
		return fmt.Errorf("upsert stream: %w", err)
	}
	return nil
}

// Lookup implements livestream.Store.
func (s *PostgresStore) Lookup(ctx context.Context, streamID string) (livestream.StreamRecord, bool, error) {
	q := fmt.Sprintf("SELECT playback_id, is_live FROM %s WHERE stream_id = $1", s.table)
	rec := livestream.StreamRecord{StreamID: streamID}
	err := s.pool.QueryRow(ctx, q, streamID).Scan(&rec.PlaybackID, &rec.IsLive)
	if errors.Is(err, pgx.ErrNoRows) {
		return livestream.StreamRecord{}, false, nil
	}
	if err != nil {
		return livestream.StreamRecord{}, false, fmt.Errorf("read stream: %w", err)
	}
	return rec, true, nil
}

// LiveCount implements livestream.LiveCounter.
func (s *PostgresStore) LiveCount(ctx context.Context) (int, error) {
	var n int
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE is_live", s.table)
	if err := s.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count live streams: %w", err)
	}
	return n, nil
}
