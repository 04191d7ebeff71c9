package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phambaophuc/image-batch-crop/internal/models"
)

func TestMemoryStore_ArchiveIsTakenOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	id, err := s.Save(ctx, "b1", &models.Archive{Name: "images_1080px_1:1.zip", Data: []byte("zip"), Entries: 2})
	require.NoError(t, err)
	assert.Equal(t, "b1", id)

	a, err := s.TakeArchive(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "images_1080px_1:1.zip", a.Name)
	assert.Equal(t, []byte("zip"), a.Data)
	assert.Equal(t, 2, a.Entries)

	_, err = s.TakeArchive(ctx, "b1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Records(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, err := s.GetRecord(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	rec := &models.BatchRecord{ID: "b2", Status: models.StatusProcessing, Items: 3}
	require.NoError(t, s.PutRecord(ctx, rec))

	rec.Status = models.StatusDone
	got, err := s.GetRecord(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, got.Status, "stored record must be a copy")
	assert.Equal(t, 3, got.Items)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, err := s.Save(ctx, "b3", &models.Archive{Name: "a.zip"})
	require.NoError(t, err)
	require.NoError(t, s.PutRecord(ctx, &models.BatchRecord{ID: "b3"}))

	now = now.Add(2 * time.Minute)

	_, err = s.TakeArchive(ctx, "b3")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetRecord(ctx, "b3")
	assert.ErrorIs(t, err, ErrNotFound)
}
