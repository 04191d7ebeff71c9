package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phambaophuc/image-batch-crop/internal/models"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, ttl), mr
}

func TestRedisStore_ArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t, time.Hour)

	data := []byte{0x50, 0x4b, 0x03, 0x04, 0x00, 0xff}
	_, err := s.Save(ctx, "b1", &models.Archive{Name: "images_640px_16:9.zip", Data: data, Entries: 3})
	require.NoError(t, err)

	assert.True(t, mr.Exists(ArchiveKeyPrefix+"b1"))
	assert.Equal(t, time.Hour, mr.TTL(ArchiveKeyPrefix+"b1"))

	a, err := s.TakeArchive(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "images_640px_16:9.zip", a.Name)
	assert.Equal(t, data, a.Data)
	assert.Equal(t, 3, a.Entries)

	assert.False(t, mr.Exists(ArchiveKeyPrefix+"b1"), "archive must be deleted once taken")

	_, err = s.TakeArchive(ctx, "b1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_ArchiveExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t, time.Minute)

	_, err := s.Save(ctx, "b2", &models.Archive{Name: "a.zip", Data: []byte("x"), Entries: 1})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = s.TakeArchive(ctx, "b2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Records(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestRedisStore(t, time.Hour)

	_, err := s.GetRecord(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	finished := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := &models.BatchRecord{
		ID:          "b3",
		Status:      models.StatusDone,
		Ratio:       "4:3",
		Width:       800,
		Quality:     0.5,
		Items:       2,
		ArchiveName: "images_800px_4:3.zip",
		CreatedAt:   finished.Add(-time.Second),
		FinishedAt:  &finished,
	}
	require.NoError(t, s.PutRecord(ctx, rec))

	got, err := s.GetRecord(ctx, "b3")
	require.NoError(t, err)
	assert.Equal(t, rec.Status, got.Status)
	assert.Equal(t, rec.ArchiveName, got.ArchiveName)
	assert.True(t, rec.FinishedAt.Equal(*got.FinishedAt))
}

func TestRedisStore_HealthCheck(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Hour)
	assert.Equal(t, "healthy", s.HealthCheck(context.Background())["redis"])

	mr.Close()
	assert.Contains(t, s.HealthCheck(context.Background())["redis"], "unhealthy")
}
