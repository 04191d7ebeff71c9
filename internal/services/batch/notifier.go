package batch

import (
	"context"

	"go.uber.org/zap"

	"github.com/phambaophuc/image-batch-crop/internal/models"
)

// Notifier receives every orchestrator state change.
type Notifier interface {
	Notify(ctx context.Context, event models.BatchEvent)
}

type NotifierFunc func(ctx context.Context, event models.BatchEvent)

func (f NotifierFunc) Notify(ctx context.Context, event models.BatchEvent) {
	f(ctx, event)
}

type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event models.BatchEvent) {
	n.logger.Debug("Batch state changed",
		zap.String("batch_id", event.BatchID),
		zap.String("status", string(event.Status)),
		zap.Int("items", event.Items),
		zap.Int("failed", event.Failed),
		zap.Int("skipped", event.Skipped),
		zap.Int("entries", event.Entries))
}
