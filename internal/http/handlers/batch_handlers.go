package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/phambaophuc/image-batch-crop/internal/config"
	"github.com/phambaophuc/image-batch-crop/internal/models"
	"github.com/phambaophuc/image-batch-crop/internal/services/batch"
	"github.com/phambaophuc/image-batch-crop/internal/services/storage"
)

const (
	imagesParamKey    = "images"
	imagesArrayKey    = "images[]"
	maxMultipartInMem = 32 << 20
	batchFailedMsg    = "Failed to process images"
)

// ServiceChecker reports per-service health, keyed by service name.
type ServiceChecker interface {
	HealthCheck(ctx context.Context) map[string]string
}

type BatchHandler struct {
	orchestrator *batch.Orchestrator
	dispatcher   *batch.Dispatcher
	session      *batch.Session
	checkers     []ServiceChecker
	logger       *zap.Logger
	config       *config.Config
}

func NewBatchHandler(
	orchestrator *batch.Orchestrator,
	dispatcher *batch.Dispatcher,
	session *batch.Session,
	logger *zap.Logger,
	config *config.Config,
	checkers ...ServiceChecker,
) *BatchHandler {
	return &BatchHandler{
		orchestrator: orchestrator,
		dispatcher:   dispatcher,
		session:      session,
		checkers:     checkers,
		logger:       logger,
		config:       config,
	}
}

// === MAIN API ENDPOINTS ===

// CreateArchive crops every uploaded image and answers with the zip.
func (h *BatchHandler) CreateArchive(c *gin.Context) {
	files, err := h.parseMultipartFiles(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	opts, err := h.parseOptions(c, h.config.Batch.Defaults)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.orchestrator.Start(c.Request.Context(), h.fileSources(files), opts)
	if !h.handleBatchError(c, res, err) {
		return
	}

	h.respondWithArchive(c, res.Archive)
}

// SubmitBatch queues the upload for background processing.
func (h *BatchHandler) SubmitBatch(c *gin.Context) {
	files, err := h.parseMultipartFiles(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	opts, err := h.parseOptions(c, h.config.Batch.Defaults)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	sources, err := h.readSources(files)
	if err != nil {
		h.logger.Error("Failed to read uploads", zap.Error(err))
		h.respondError(c, http.StatusBadRequest, "Failed to read uploaded images")
		return
	}

	rec, err := h.dispatcher.Submit(c.Request.Context(), sources, opts)
	switch {
	case errors.Is(err, batch.ErrBusy):
		h.respondError(c, http.StatusConflict, "Another batch is being processed")
		return
	case errors.Is(err, batch.ErrNothingToProcess):
		h.respondError(c, http.StatusBadRequest, "Select images and size")
		return
	case err != nil:
		h.logger.Error("Failed to submit batch", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, batchFailedMsg)
		return
	}

	c.JSON(http.StatusAccepted, models.APIResponse{
		Success: true,
		Data:    rec,
	})
}

func (h *BatchHandler) GetBatch(c *gin.Context) {
	rec, err := h.dispatcher.Record(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondLookupError(c, err, "Batch not found")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    rec,
	})
}

// DownloadBatch serves a finished archive once.
func (h *BatchHandler) DownloadBatch(c *gin.Context) {
	archive, err := h.dispatcher.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondLookupError(c, err, "Archive not found or already downloaded")
		return
	}

	h.respondWithArchive(c, archive)
}

func (h *BatchHandler) GetRatios(c *gin.Context) {
	defaults := h.config.Batch.Defaults

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data: models.RatioOptions{
			Ratios:         models.SupportedRatioStrings(),
			DefaultRatio:   defaults.AspectRatio.String(),
			MinWidth:       models.MinWidth,
			MaxWidth:       models.MaxWidth,
			WidthStep:      models.WidthStep,
			DefaultWidth:   defaults.Width,
			MinQuality:     models.MinQuality,
			MaxQuality:     models.MaxQuality,
			DefaultQuality: defaults.Quality,
		},
	})
}

// HealthCheck
func (h *BatchHandler) HealthCheck(c *gin.Context) {
	services := make(map[string]string)
	for _, checker := range h.checkers {
		for k, v := range checker.HealthCheck(c.Request.Context()) {
			services[k] = v
		}
	}

	overall := h.calculateOverallHealth(services)

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:      overall,
			BatchStatus: h.orchestrator.Status(),
			Timestamp:   time.Now(),
			Services:    services,
		},
	})
}

func (h *BatchHandler) respondLookupError(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, storage.ErrNotFound) {
		h.respondError(c, http.StatusNotFound, notFoundMsg)
		return
	}

	h.logger.Error("Store lookup failed", zap.String("batch_id", c.Param("id")), zap.Error(err))
	h.respondError(c, http.StatusInternalServerError, "Internal storage error")
}
