package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"mux-livestream/internal/livestream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T, prefix string) *SQLiteStore {
	t.Helper()

	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "state", "livestreams.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewSQLiteStore(db, prefix)
	require.NoError(t, err)
	require.NoError(t, s.CreateTable(context.Background()))
	return s
}

func TestSQLiteStore_CreateTable(t *testing.T) {
	t.Parallel()
	s := newSQLiteStore(t, "wp_")

	var name string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?;", "wp_mux_livestreams").Scan(&name)
	require.NoError(t, err)

	// Idempotent.
	require.NoError(t, s.CreateTable(context.Background()))
}

func TestSQLiteStore_UpsertLookup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newSQLiteStore(t, "")

	_, found, err := s.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Upsert(ctx, livestream.StreamRecord{StreamID: "abc", PlaybackID: "p1", IsLive: true}))
	require.NoError(t, s.Upsert(ctx, livestream.StreamRecord{StreamID: "abc", PlaybackID: "p2", IsLive: false}))

	got, found, err := s.Lookup(ctx, "abc")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, livestream.StreamRecord{StreamID: "abc", PlaybackID: "p2", IsLive: false}, got)

	var rows int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM mux_livestreams WHERE stream_id = ?;", "abc").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestSQLiteStore_LiveCount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newSQLiteStore(t, "")

	require.NoError(t, s.Upsert(ctx, livestream.StreamRecord{StreamID: "a", PlaybackID: "p", IsLive: true}))
	require.NoError(t, s.Upsert(ctx, livestream.StreamRecord{StreamID: "b", PlaybackID: "p", IsLive: true}))
	require.NoError(t, s.Upsert(ctx, livestream.StreamRecord{StreamID: "a", PlaybackID: "p", IsLive: false}))

	n, err := s.LiveCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteStore_concurrent_upserts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newSQLiteStore(t, "")

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.Upsert(ctx, livestream.StreamRecord{StreamID: fmt.Sprintf("s%d", i%4), PlaybackID: fmt.Sprintf("p%d", i)})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var rows int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM mux_livestreams;").Scan(&rows))
	assert.Equal(t, 4, rows)
}

func TestSQLiteStore_DropTable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newSQLiteStore(t, "")
	require.NoError(t, s.Upsert(ctx, livestream.StreamRecord{StreamID: "a", PlaybackID: "p"}))

	require.NoError(t, s.DropTable(ctx))
	require.NoError(t, s.DropTable(ctx))

	_, _, err := s.Lookup(ctx, "a")
	assert.Error(t, err)
}

func TestTableName(t *testing.T) {
	name, err := TableName("wp_")
	require.NoError(t, err)
	assert.Equal(t, "wp_mux_livestreams", name)

	_, err = TableName("wp; DROP TABLE users; --")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		b, closeFn, err := Open(ctx, Options{Driver: DriverMemory})
		require.NoError(t, err)
		defer closeFn()
		require.NoError(t, b.CreateTable(ctx))
		require.NoError(t, b.Upsert(ctx, livestream.StreamRecord{StreamID: "a", PlaybackID: "p", IsLive: true}))
		n, err := b.LiveCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("sqlite", func(t *testing.T) {
		b, closeFn, err := Open(ctx, Options{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.db"), TablePrefix: "t_"})
		require.NoError(t, err)
		defer closeFn()
		require.NoError(t, b.CreateTable(ctx))
		require.NoError(t, b.Upsert(ctx, livestream.StreamRecord{StreamID: "a", PlaybackID: "p"}))
		got, found, err := b.Lookup(ctx, "a")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "p", got.PlaybackID)
	})

	t.Run("bad prefix", func(t *testing.T) {
		_, _, err := Open(ctx, Options{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.db"), TablePrefix: "a-b"})
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, _, err := Open(ctx, Options{Driver: "mysql"})
		assert.Error(t, err)
	})
}
