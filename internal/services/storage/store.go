package storage

import (
	"context"

	"github.com/phambaophuc/image-batch-crop/internal/models"
)

// Store keeps batch records and finished archives for a limited time.
// An archive can be taken once.
type Store interface {
	Save(ctx context.Context, id string, a *models.Archive) (string, error)
	TakeArchive(ctx context.Context, id string) (*models.Archive, error)
	PutRecord(ctx context.Context, rec *models.BatchRecord) error
	GetRecord(ctx context.Context, id string) (*models.BatchRecord, error)
	HealthCheck(ctx context.Context) map[string]string
	Close() error
}
