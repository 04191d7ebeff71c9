package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phambaophuc/image-batch-crop/internal/models"
)

var ErrNothingToProcess = errors.New("no images or incomplete options")

// ArchiveStore keeps batch records and finished archives until they are
// downloaded.
type ArchiveStore interface {
	Saver
	PutRecord(ctx context.Context, rec *models.BatchRecord) error
	GetRecord(ctx context.Context, id string) (*models.BatchRecord, error)
	TakeArchive(ctx context.Context, id string) (*models.Archive, error)
}

// Dispatcher runs batches in the background and tracks them by ID.
type Dispatcher struct {
	orchestrator *Orchestrator
	store        ArchiveStore
	uploader     Saver
	logger       *zap.Logger
	now          func() time.Time
}

// NewDispatcher wires the async flow. uploader may be nil.
func NewDispatcher(o *Orchestrator, store ArchiveStore, uploader Saver, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		orchestrator: o,
		store:        store,
		uploader:     uploader,
		logger:       logger,
		now:          time.Now,
	}
}

// Submit records a new batch and starts it. The returned record is in
// the processing state; poll Record for the outcome.
func (d *Dispatcher) Submit(ctx context.Context, sources []models.SourceImage, opts models.ProcessingOptions) (*models.BatchRecord, error) {
	rec := &models.BatchRecord{
		ID:        uuid.NewString(),
		Status:    models.StatusProcessing,
		Ratio:     opts.AspectRatio.String(),
		Width:     opts.Width,
		Quality:   opts.Quality,
		Items:     len(sources),
		CreatedAt: d.now(),
	}

	// Completion waits until the initial record is stored so it cannot
	// be overwritten by it.
	stored := make(chan struct{})
	defer close(stored)

	bg := context.WithoutCancel(ctx)
	started, err := d.orchestrator.Launch(bg, rec.ID, sources, opts, func(res *Result, err error) {
		<-stored
		d.complete(bg, rec, res, err)
	})
	if err != nil {
		return nil, err
	}
	if !started {
		return nil, ErrNothingToProcess
	}

	if err := d.store.PutRecord(ctx, rec); err != nil {
		d.logger.Warn("Failed to store batch record", zap.String("batch_id", rec.ID), zap.Error(err))
	}

	snapshot := *rec
	return &snapshot, nil
}

func (d *Dispatcher) Record(ctx context.Context, id string) (*models.BatchRecord, error) {
	return d.store.GetRecord(ctx, id)
}

// Download returns the archive once; later calls report it missing.
func (d *Dispatcher) Download(ctx context.Context, id string) (*models.Archive, error) {
	return d.store.TakeArchive(ctx, id)
}

func (d *Dispatcher) complete(ctx context.Context, rec *models.BatchRecord, res *Result, runErr error) {
	finished := d.now()
	final := *rec
	final.FinishedAt = &finished

	if res != nil {
		final.Failed = res.Failed()
		final.Skipped = res.Skipped()
	}

	if runErr != nil {
		final.Status = models.StatusFailed
		final.Error = "failed to process batch"
	} else if err := d.save(ctx, &final, res); err != nil {
		d.logger.Error("Failed to save archive", zap.String("batch_id", rec.ID), zap.Error(err))
		final.Status = models.StatusFailed
		final.Error = "failed to save archive"
	} else {
		final.Status = models.StatusDone
	}

	if err := d.store.PutRecord(ctx, &final); err != nil {
		d.logger.Error("Failed to store batch record", zap.String("batch_id", rec.ID), zap.Error(err))
	}
}

func (d *Dispatcher) save(ctx context.Context, rec *models.BatchRecord, res *Result) error {
	rec.ArchiveName = res.Archive.Name

	if _, err := d.store.Save(ctx, res.ID, res.Archive); err != nil {
		return fmt.Errorf("store archive: %w", err)
	}

	if d.uploader != nil {
		url, err := d.uploader.Save(ctx, res.ID, res.Archive)
		if err != nil {
			// The stored copy is still downloadable.
			d.logger.Warn("Failed to upload archive", zap.String("batch_id", res.ID), zap.Error(err))
			return nil
		}
		rec.URL = url
	}

	return nil
}
