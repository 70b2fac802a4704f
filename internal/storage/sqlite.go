package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mux-livestream/internal/livestream"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens (and creates if needed) the SQLite database at path.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// SQLiteStore is a livestream.Store backed by a SQLite table.
type SQLiteStore struct {
	db    *sql.DB
	table string
}

// NewSQLiteStore returns a store over the prefixed table in db.
// The table must exist; see CreateTable.
func NewSQLiteStore(db *sql.DB, prefix string) (*SQLiteStore, error) {
	table, err := TableName(prefix)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, table: table}, nil
}

// CreateTable creates the stream table if missing.
func (s *SQLiteStore) CreateTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL(s.table)); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// DropTable removes the stream table and every record in it.
func (s *SQLiteStore) DropTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, dropTableSQL(s.table)); err != nil {
		return fmt.Errorf("drop table %s: %w", s.table, err)
	}
	return nil
}

// Upsert implements livestream.Store.
func (s *SQLiteStore) Upsert(ctx context.Context, rec livestream.StreamRecord) error {
	q := fmt.Sprintf("INSERT OR REPLACE INTO %s (stream_id, playback_id, is_live) VALUES (?, ?, ?);", s.table)
	if _, err := s.db.ExecContext(ctx, q, rec.StreamID, rec.PlaybackID, rec.IsLive); err != nil {
		return fmt.Errorf("upsert stream: %w", err)
	}
	return nil
}

// Lookup implements livestream.Store.
func (s *SQLiteStore) Lookup(ctx context.Context, streamID string) (livestream.StreamRecord, bool, error) {
	q := fmt.Sprintf("SELECT playback_id, is_live FROM %s WHERE stream_id = ?;", s.table)
	rec := livestream.StreamRecord{StreamID: streamID}
	err := s.db.QueryRowContext(ctx, q, streamID).Scan(&rec.PlaybackID, &rec.IsLive)
	if errors.Is(err, sql.ErrNoRows) {
		return livestream.StreamRecord{}, false, nil
	}
	if err != nil {
		return livestream.StreamRecord{}, false, fmt.Errorf("read stream: %w", err)
	}
	return rec, true, nil
}

// LiveCount implements livestream.LiveCounter.
func (s *SQLiteStore) LiveCount(ctx context.Context) (int, error) {
	var n int
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE is_live;", s.table)
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count live streams: %w", err)
	}
	return n, nil
}
