package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phambaophuc/image-batch-crop/internal/models"
)

type memoryEntry[T any] struct {
	value   T
	expires time.Time
}

type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	archives map[string]memoryEntry[models.Archive]
	records  map[string]memoryEntry[models.BatchRecord]
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		archives: make(map[string]memoryEntry[models.Archive]),
		records:  make(map[string]memoryEntry[models.BatchRecord]),
		now:      time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, id string, a *models.Archive) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purge()
	s.archives[id] = memoryEntry[models.Archive]{value: *a, expires: s.now().Add(s.ttl)}
	return id, nil
}

func (s *MemoryStore) TakeArchive(_ context.Context, id string) (*models.Archive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purge()
	entry, ok := s.archives[id]
	if !ok {
		return nil, fmt.Errorf("archive %s: %w", id, ErrNotFound)
	}
	delete(s.archives, id)

	a := entry.value
	return &a, nil
}

func (s *MemoryStore) PutRecord(_ context.Context, rec *models.BatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purge()
	s.records[rec.ID] = memoryEntry[models.BatchRecord]{value: *rec, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) GetRecord(_ context.Context, id string) (*models.BatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purge()
	entry, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}

	rec := entry.value
	return &rec, nil
}

func (s *MemoryStore) HealthCheck(context.Context) map[string]string {
	return map[string]string{"store": "healthy"}
}

func (s *MemoryStore) Close() error {
	return nil
}

// purge drops expired entries; callers hold s.mu.
func (s *MemoryStore) purge() {
	now := s.now()
	for id, e := range s.archives {
		if now.After(e.expires) {
			delete(s.archives, id)
		}
	}
	for id, e := range s.records {
		if now.After(e.expires) {
			delete(s.records, id)
		}
	}
}
