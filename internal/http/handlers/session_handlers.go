package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/phambaophuc/image-batch-crop/internal/models"
	"github.com/phambaophuc/image-batch-crop/internal/services/batch"
)

type sessionView struct {
	Images  []string           `json:"images"`
	Ratio   string             `json:"ratio"`
	Width   int                `json:"width"`
	Quality float64            `json:"quality"`
	Status  models.BatchStatus `json:"status"`
}

func (h *BatchHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    h.sessionView(),
	})
}

// AddSessionImages appends uploads to the working selection. The
// selection is locked while a batch is processing.
func (h *BatchHandler) AddSessionImages(c *gin.Context) {
	if h.orchestrator.Status() == models.StatusProcessing {
		h.respondError(c, http.StatusConflict, "Another batch is being processed")
		return
	}

	files, err := h.parseMultipartFiles(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if limit := h.config.Batch.MaxFiles; limit > 0 && h.session.Len()+len(files) > limit {
		h.respondError(c, http.StatusBadRequest, "too many images in selection")
		return
	}

	sources, err := h.readSources(files)
	if err != nil {
		h.logger.Error("Failed to read uploads", zap.Error(err))
		h.respondError(c, http.StatusBadRequest, "Failed to read uploaded images")
		return
	}

	h.session.Add(sources...)

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    h.sessionView(),
	})
}

func (h *BatchHandler) ClearSessionImages(c *gin.Context) {
	h.session.Clear()

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    h.sessionView(),
	})
}

func (h *BatchHandler) UpdateSessionOptions(c *gin.Context) {
	opts, err := h.parseOptions(c, h.session.Options())
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	h.session.SetOptions(opts)

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    h.sessionView(),
	})
}

// SubmitSession processes the selection and downloads the archive.
func (h *BatchHandler) SubmitSession(c *gin.Context) {
	download := batch.SaverFunc(func(_ context.Context, _ string, a *models.Archive) (string, error) {
		h.respondWithArchive(c, a)
		return a.Name, nil
	})

	res, _, err := h.session.Submit(c.Request.Context(), download)
	h.handleBatchError(c, res, err)
}

func (h *BatchHandler) sessionView() sessionView {
	opts := h.session.Options()
	return sessionView{
		Images:  h.session.Filenames(),
		Ratio:   opts.AspectRatio.String(),
		Width:   opts.Width,
		Quality: opts.Quality,
		Status:  h.orchestrator.Status(),
	}
}
