package storage

import (
	"context"
	"fmt"

	"mux-livestream/internal/livestream"
)

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Backend is a Store that also manages its own schema.
type Backend interface {
	livestream.Store
	livestream.LiveCounter
	CreateTable(ctx context.Context) error
	DropTable(ctx context.Context) error
}

// Options selects and configures a backend.
type Options struct {
	Driver        string
	TablePrefix   string
	SQLitePath    string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open connects the configured backend. The returned close function releases
// its connections and is never nil on success.
func Open(ctx context.Context, opts Options) (Backend, func() error, error) {
	switch opts.Driver {
	case DriverMemory, "":
		return memoryBackend{livestream.NewInMemoryStore()}, func() error { return nil }, nil

	case DriverSQLite:
		db, err := OpenSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		s, err := NewSQLiteStore(db, opts.TablePrefix)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return s, db.Close, nil

	case DriverPostgres:
		pool, err := NewPostgresPool(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		s, err := NewPostgresStore(pool, opts.TablePrefix)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return s, func() error { pool.Close(); return nil }, nil

	case DriverRedis:
		rdb, err := NewRedisClient(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		s, err := NewRedisStore(rdb, opts.TablePrefix)
		if err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		return s, rdb.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

// memoryBackend adapts the in-memory store; it has no schema to manage.
type memoryBackend struct {
	*livestream.InMemoryStore
}

func (memoryBackend) CreateTable(context.Context) error { return nil }
func (memoryBackend) DropTable(context.Context) error   { return nil }
