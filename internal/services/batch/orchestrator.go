package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/phambaophuc/image-batch-crop/internal/models"
	"github.com/phambaophuc/image-batch-crop/internal/services/archive"
	"github.com/phambaophuc/image-batch-crop/internal/services/processor"
)

var (
	ErrBusy   = errors.New("a batch is already processing")
	ErrFailed = errors.New("batch failed")
)

// Transformer turns one source image into its encoded output.
type Transformer interface {
	Transform(ctx context.Context, src models.SourceImage, opts models.ProcessingOptions) (*models.EncodedImage, error)
}

// Result is what a finished batch produced.
type Result struct {
	ID       string
	Archive  *models.Archive
	Outcomes []models.Outcome
}

// Failed counts items whose transform returned an error of its own.
func (r *Result) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil && !errors.Is(o.Err, context.Canceled) {
			n++
		}
	}
	return n
}

// Skipped counts items abandoned because the batch was cancelled.
func (r *Result) Skipped() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil && errors.Is(o.Err, context.Canceled) {
			n++
		}
	}
	return n
}

func (r *Result) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Orchestrator runs one batch at a time: Idle → Processing → Done | Failed.
// Done and Failed accept a new batch.
type Orchestrator struct {
	processor Transformer
	logger    *zap.Logger
	workers   int
	policy    FailurePolicy
	notifiers []Notifier
	newID     func() string
	now       func() time.Time

	mu      sync.Mutex
	status  models.BatchStatus
	current string
}

type Option func(*Orchestrator)

// WithWorkers bounds how many images are transformed at once.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

func WithFailurePolicy(p FailurePolicy) Option {
	return func(o *Orchestrator) {
		o.policy = p
	}
}

func WithNotifier(n ...Notifier) Option {
	return func(o *Orchestrator) {
		o.notifiers = append(o.notifiers, n...)
	}
}

func NewOrchestrator(p Transformer, logger *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		processor: p,
		logger:    logger,
		workers:   runtime.NumCPU(),
		policy:    AllOrNothing,
		newID:     uuid.NewString,
		now:       time.Now,
		status:    models.StatusIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Status() models.BatchStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *Orchestrator) Workers() int {
	return o.workers
}

// Start processes sources synchronously. An empty batch or incomplete
// options is a no-op returning (nil, nil). ErrBusy is returned while
// another batch is in flight.
func (o *Orchestrator) Start(ctx context.Context, sources []models.SourceImage, opts models.ProcessingOptions) (*Result, error) {
	return o.StartWithID(ctx, o.newID(), sources, opts)
}

func (o *Orchestrator) StartWithID(ctx context.Context, id string, sources []models.SourceImage, opts models.ProcessingOptions) (*Result, error) {
	if !runnable(sources, opts) {
		o.logger.Debug("Nothing to process",
			zap.Int("images", len(sources)),
			zap.Bool("options_complete", opts.Complete()))
		return nil, nil
	}

	if err := o.begin(ctx, id, len(sources), opts); err != nil {
		return nil, err
	}

	return o.run(ctx, id, sources, opts)
}

// Launch reserves the orchestrator synchronously and runs the batch in
// the background, reporting to done when it finishes. It returns false
// for a no-op batch.
func (o *Orchestrator) Launch(ctx context.Context, id string, sources []models.SourceImage, opts models.ProcessingOptions, done func(*Result, error)) (bool, error) {
	if !runnable(sources, opts) {
		return false, nil
	}

	if err := o.begin(ctx, id, len(sources), opts); err != nil {
		return false, err
	}

	go func() {
		res, err := o.run(ctx, id, sources, opts)
		if done != nil {
			done(res, err)
		}
	}()

	return true, nil
}

func runnable(sources []models.SourceImage, opts models.ProcessingOptions) bool {
	return len(sources) > 0 && opts.Complete()
}

func (o *Orchestrator) begin(ctx context.Context, id string, items int, opts models.ProcessingOptions) error {
	o.mu.Lock()
	if o.status == models.StatusProcessing {
		current := o.current
		o.mu.Unlock()
		o.logger.Warn("Batch rejected, another batch is processing",
			zap.String("batch_id", id),
			zap.String("current_batch_id", current))
		return ErrBusy
	}
	o.status = models.StatusProcessing
	o.current = id
	o.mu.Unlock()

	o.logger.Info("Batch started",
		zap.String("batch_id", id),
		zap.Int("images", items),
		zap.String("ratio", opts.AspectRatio.String()),
		zap.Int("width", opts.Width),
		zap.Float64("quality", opts.Quality),
		zap.Int("workers", o.workers),
		zap.String("policy", string(o.policy)))

	o.notify(ctx, models.BatchEvent{
		BatchID: id,
		Status:  models.StatusProcessing,
		Items:   items,
		Ratio:   opts.AspectRatio.String(),
		Width:   opts.Width,
	})
	return nil
}

func (o *Orchestrator) run(ctx context.Context, id string, sources []models.SourceImage, opts models.ProcessingOptions) (*Result, error) {
	started := o.now()
	res := &Result{ID: id, Outcomes: o.transformAll(ctx, sources, opts)}

	failed, skipped := res.Failed(), res.Skipped()
	for _, out := range res.Outcomes {
		if out.Err != nil && !errors.Is(out.Err, context.Canceled) {
			o.logger.Error("Image processing failed",
				zap.String("batch_id", id),
				zap.Int("index", out.Index),
				zap.String("filename", out.Name),
				zap.String("stage", processor.Stage(out.Err)),
				zap.Error(out.Err))
		}
	}

	var err error
	switch {
	case res.Succeeded() == 0:
		err = fmt.Errorf("%w: none of %d images processed: %w", ErrFailed, len(sources), firstError(res.Outcomes))
	case skipped > 0, failed > 0 && o.policy == AllOrNothing:
		err = fmt.Errorf("%w: %w", ErrFailed, firstError(res.Outcomes))
	default:
		res.Archive, err = o.buildArchive(res.Outcomes, opts)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrFailed, err)
		}
	}

	event := models.BatchEvent{
		BatchID: id,
		Items:   len(sources),
		Failed:  failed,
		Skipped: skipped,
		Ratio:   opts.AspectRatio.String(),
		Width:   opts.Width,
	}

	if err != nil {
		res.Archive = nil
		o.finish(models.StatusFailed)
		event.Status = models.StatusFailed
		o.logger.Error("Batch failed",
			zap.String("batch_id", id),
			zap.Int("failed", failed),
			zap.Int("skipped", skipped),
			zap.Duration("elapsed", o.now().Sub(started)),
			zap.Error(err))
		o.notify(ctx, event)
		return res, err
	}

	o.finish(models.StatusDone)
	event.Status = models.StatusDone
	event.Entries = res.Archive.Entries
	o.logger.Info("Batch completed",
		zap.String("batch_id", id),
		zap.String("archive", res.Archive.Name),
		zap.Int("entries", res.Archive.Entries),
		zap.Int("bytes", len(res.Archive.Data)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", o.now().Sub(started)))
	o.notify(ctx, event)
	return res, nil
}

// transformAll fans sources out over a bounded pool. g.Go blocks once
// the limit is reached, so at most o.workers images are in memory.
func (o *Orchestrator) transformAll(ctx context.Context, sources []models.SourceImage, opts models.ProcessingOptions) []models.Outcome {
	outcomes := make([]models.Outcome, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i, src := range sources {
		i, src := i, src // per-iteration copies (go directive is 1.21)
		g.Go(func() error {
			img, err := o.processor.Transform(gctx, src, opts)
			outcomes[i] = models.Outcome{Index: i, Name: src.Filename, Image: img, Err: err}
			if err != nil && o.policy == AllOrNothing {
				return err
			}
			return nil
		})
	}

	// Errors are already recorded per outcome.
	_ = g.Wait()

	return outcomes
}

func (o *Orchestrator) buildArchive(outcomes []models.Outcome, opts models.ProcessingOptions) (*models.Archive, error) {
	images := make([]models.EncodedImage, 0, len(outcomes))
	for _, out := range outcomes {
		if out.OK() {
			images = append(images, *out.Image)
		}
	}

	data, err := archive.Build(images)
	if err != nil {
		return nil, err
	}

	return &models.Archive{
		Name:    opts.ArchiveName(),
		Data:    data,
		Entries: len(images),
	}, nil
}

func (o *Orchestrator) finish(status models.BatchStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = status
	o.current = ""
}

func (o *Orchestrator) notify(ctx context.Context, event models.BatchEvent) {
	event.OccurredAt = o.now()
	for _, n := range o.notifiers {
		n.Notify(ctx, event)
	}
}

func firstError(outcomes []models.Outcome) error {
	for _, out := range outcomes {
		if out.Err != nil && !errors.Is(out.Err, context.Canceled) {
			return out.Err
		}
	}
	for _, out := range outcomes {
		if out.Err != nil {
			return out.Err
		}
	}
	return nil
}
