package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/phambaophuc/image-batch-crop/internal/models"
)

// PublishEvent sends a batch state change to the queue.
func (q *QueueService) PublishEvent(ctx context.Context, event models.BatchEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = q.channel.Publish(
		"",          // exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    event.BatchID + ":" + string(event.Status),
			Type:         "batch." + string(event.Status),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Notify publishes event, logging instead of failing the batch.
func (q *QueueService) Notify(ctx context.Context, event models.BatchEvent) {
	if err := q.PublishEvent(ctx, event); err != nil {
		q.logger.Warn("Failed to publish batch event",
			zap.String("batch_id", event.BatchID),
			zap.String("status", string(event.Status)),
			zap.Error(err))
		return
	}

	q.logger.Debug("Batch event published",
		zap.String("batch_id", event.BatchID),
		zap.String("status", string(event.Status)))
}
