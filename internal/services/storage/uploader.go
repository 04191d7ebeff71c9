package storage

import (
	"bytes"
	"context"
	"fmt"

	storage_go "github.com/supabase-community/storage-go"

	"github.com/phambaophuc/image-batch-crop/internal/config"
	"github.com/phambaophuc/image-batch-crop/internal/models"
	"github.com/phambaophuc/image-batch-crop/pkg/utils"
)

// BucketUploader publishes finished archives to a Supabase bucket.
type BucketUploader struct {
	sbClient *storage_go.Client
	bucket   string
}

// NewBucketUploader returns nil when Supabase is not configured.
func NewBucketUploader(cfg *config.Config) *BucketUploader {
	if cfg.Supabase.URL == "" || cfg.Supabase.KEY == "" || cfg.Supabase.BUCKET == "" {
		return nil
	}

	return &BucketUploader{
		sbClient: storage_go.NewClient(cfg.Supabase.URL+"/storage/v1", cfg.Supabase.KEY, nil),
		bucket:   cfg.Supabase.BUCKET,
	}
}

// Save uploads the archive and returns its public URL.
func (u *BucketUploader) Save(ctx context.Context, id string, a *models.Archive) (string, error) {
	key := utils.GenerateStorageKey(id, a.Name)

	_, err := u.sbClient.UploadFile(u.bucket, key, bytes.NewReader(a.Data))
	if err != nil {
		return "", fmt.Errorf("failed to upload to supabase: %w", err)
	}

	publicURL := u.sbClient.GetPublicUrl(u.bucket, key)
	return publicURL.SignedURL, nil
}
