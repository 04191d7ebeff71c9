package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phambaophuc/image-batch-crop/internal/models"
)

const (
	ArchiveKeyPrefix = "batch_archive:"
	RecordKeyPrefix  = "batch_record:"
)

// RedisStore keeps archives as hashes and records as JSON, both with a TTL.
type RedisStore struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		redisClient: client,
		ttl:         ttl,
	}
}

func (s *RedisStore) Save(ctx context.Context, id string, a *models.Archive) (string, error) {
	key := ArchiveKeyPrefix + id

	_, err := s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "name", a.Name, "entries", a.Entries, "data", a.Data)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("cache set error: %w", err)
	}

	return id, nil
}

// TakeArchive reads and deletes the archive in one transaction.
func (s *RedisStore) TakeArchive(ctx context.Context, id string) (*models.Archive, error) {
	key := ArchiveKeyPrefix + id

	var get *redis.MapStringStringCmd
	_, err := s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.HGetAll(ctx, key)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	fields := get.Val()
	if len(fields) == 0 {
		return nil, fmt.Errorf("archive %s: %w", id, ErrNotFound)
	}

	entries, err := strconv.Atoi(fields["entries"])
	if err != nil {
		return nil, fmt.Errorf("archive %s: invalid entry count: %w", id, err)
	}

	return &models.Archive{
		Name:    fields["name"],
		Data:    []byte(fields["data"]),
		Entries: entries,
	}, nil
}

func (s *RedisStore) PutRecord(ctx context.Context, rec *models.BatchRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return s.redisClient.Set(ctx, RecordKeyPrefix+rec.ID, data, s.ttl).Err()
}

func (s *RedisStore) GetRecord(ctx context.Context, id string) (*models.BatchRecord, error) {
	data, err := s.redisClient.Get(ctx, RecordKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("batch %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	var rec models.BatchRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) Close() error {
	return s.redisClient.Close()
}
