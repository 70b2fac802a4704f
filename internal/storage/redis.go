package storage

import (
	"context"
	"fmt"

	"mux-livestream/internal/livestream"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates a Redis client and verifies connectivity.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// RedisStore is a livestream.Store keeping one hash per stream:
//
//	<prefix>mux_livestreams:<stream_id> -> {playback_id, is_live}
//
// plus a set of live stream IDs for LiveCount.
type RedisStore struct {
	rdb       redis.UniversalClient
	keyPrefix string
	liveKey   string
}

// NewRedisStore returns a store using keys under the prefixed table name.
func NewRedisStore(rdb redis.UniversalClient, prefix string) (*RedisStore, error) {
	table, err := TableName(prefix)
	if err != nil {
		return nil, err
	}
	return &RedisStore{
		rdb:       rdb,
		keyPrefix: table + ":",
		liveKey:   table + ":_live",
	}, nil
}

func (s *RedisStore) key(streamID string) string {
	return s.keyPrefix + "stream:" + streamID
}

// Upsert implements livestream.Store. The hash write and the live-set update
// run in one MULTI/EXEC transaction.
func (s *RedisStore) Upsert(ctx context.Context, rec livestream.StreamRecord) error {
	live := "0"
	if rec.IsLive {
		live = "1"
	}
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key(rec.StreamID), "playback_id", rec.PlaybackID, "is_live", live)
		if rec.IsLive {
			pipe.SAdd(ctx, s.liveKey, rec.StreamID)
		} else {
			pipe.SRem(ctx, s.liveKey, rec.StreamID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert stream: %w", err)
	}
	return nil
}

// Lookup implements livestream.Store.
func (s *RedisStore) Lookup(ctx context.Context, streamID string) (livestream.StreamRecord, bool, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(streamID)).Result()
	if err != nil {
		return livestream.StreamRecord{}, false, fmt.Errorf("read stream: %w", err)
	}
	if len(fields) == 0 {
		return livestream.StreamRecord{}, false, nil
	}
	return livestream.StreamRecord{
		StreamID:   streamID,
		PlaybackID: fields["playback_id"],
		IsLive:     fields["is_live"] == "1",
	}, true, nil
}

// LiveCount implements livestream.LiveCounter.
func (s *RedisStore) LiveCount(ctx context.Context) (int, error) {
	n, err := s.rdb.SCard(ctx, s.liveKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count live streams: %w", err)
	}
	return int(n), nil
}

// DropTable deletes every key owned by the store.
func (s *RedisStore) DropTable(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, s.keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("delete %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan keys: %w", err)
	}
	return nil
}

// CreateTable is a no-op; Redis keys are created on first write.
func (s *RedisStore) CreateTable(context.Context) error { return nil }
