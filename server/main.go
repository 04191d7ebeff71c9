package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/phambaophuc/image-batch-crop/internal/config"
	"github.com/phambaophuc/image-batch-crop/internal/http/handlers"
	"github.com/phambaophuc/image-batch-crop/internal/http/routes"
	"github.com/phambaophuc/image-batch-crop/internal/services/batch"
	"github.com/phambaophuc/image-batch-crop/internal/services/processor"
	"github.com/phambaophuc/image-batch-crop/internal/services/queue"
	"github.com/phambaophuc/image-batch-crop/internal/services/storage"
)

// fixedHealth reports a constant status for a service that is switched
// off or failed to start.
type fixedHealth struct {
	name, status string
}

func (f fixedHealth) HealthCheck(context.Context) map[string]string {
	return map[string]string{f.name: f.status}
}

// queueHealth adapts the queue's health report to handlers.ServiceChecker.
type queueHealth struct {
	*queue.QueueService
}

func (q queueHealth) HealthCheck(ctx context.Context) map[string]string {
	return q.ServiceHealth(ctx)
}

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if err := handlers.RegisterValidators(); err != nil {
		logger.Fatal("Failed to register validators", zap.Error(err))
	}

	policy, err := batch.ParseFailurePolicy(cfg.Batch.FailurePolicy)
	if err != nil {
		logger.Fatal("Invalid failure policy", zap.Error(err))
	}

	// Initialize services
	imageProcessor := processor.NewImageProcessor()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	store := storage.NewArchiveStore(startupCtx, cfg, logger)
	cancelStartup()
	defer store.Close()

	checkers := []handlers.ServiceChecker{store}
	notifiers := []batch.Notifier{batch.NewLogNotifier(logger)}

	if cfg.RabbitMQ.URL == "" {
		checkers = append(checkers, fixedHealth{"queue", "not configured"})
	} else if q, err := queue.NewQueueService(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, logger); err != nil {
		logger.Warn("Failed to initialize queue service", zap.Error(err))
		// Continue without batch events
		checkers = append(checkers, fixedHealth{"queue", "unhealthy: " + err.Error()})
	} else {
		defer q.Close()
		if stats, err := q.GetQueueStats(); err == nil {
			logger.Info("Publishing batch events", zap.Any("queue", stats))
		}
		notifiers = append(notifiers, q)
		checkers = append(checkers, queueHealth{q})
	}

	var uploader batch.Saver
	if u := storage.NewBucketUploader(cfg); u != nil {
		uploader = u
		checkers = append(checkers, u)
	} else {
		checkers = append(checkers, fixedHealth{"supabase", "not configured"})
	}

	orchestrator := batch.NewOrchestrator(imageProcessor, logger,
		batch.WithWorkers(cfg.Batch.Workers),
		batch.WithFailurePolicy(policy),
		batch.WithNotifier(notifiers...),
	)
	dispatcher := batch.NewDispatcher(orchestrator, store, uploader, logger)
	session := batch.NewSession(orchestrator, cfg.Batch.Defaults)

	// Initialize handlers
	batchHandler := handlers.NewBatchHandler(orchestrator, dispatcher, session, logger, cfg, checkers...)

	router := routes.NewRouter(batchHandler, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			zap.String("addr", server.Addr),
			zap.Int("workers", orchestrator.Workers()),
			zap.String("failure_policy", string(policy)))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
