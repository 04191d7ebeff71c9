package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/phambaophuc/image-batch-crop/internal/models"
	"github.com/phambaophuc/image-batch-crop/internal/services/batch"
	"github.com/phambaophuc/image-batch-crop/pkg/utils"
)

// === REQUEST PARSING ===

// parseOptions binds ratio, width and quality, filling omitted fields
// from defaults.
func (h *BatchHandler) parseOptions(c *gin.Context, defaults models.ProcessingOptions) (models.ProcessingOptions, error) {
	var form models.BatchForm
	if err := c.ShouldBind(&form); err != nil {
		return models.ProcessingOptions{}, fmt.Errorf("invalid options: %s", validationMessage(err))
	}

	opts := defaults
	if form.Ratio != "" {
		ratio, err := models.ParseAspectRatio(form.Ratio)
		if err != nil {
			return models.ProcessingOptions{}, err
		}
		opts.AspectRatio = ratio
	}
	if form.Width != 0 {
		opts.Width = form.Width
	}
	if form.Quality != 0 {
		opts.Quality = form.Quality
	}

	return opts, nil
}

func (h *BatchHandler) parseMultipartFiles(c *gin.Context) ([]*multipart.FileHeader, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartInMem); err != nil {
		return nil, fmt.Errorf("failed to parse form data: %v", err)
	}

	form := c.Request.MultipartForm
	files := make([]*multipart.FileHeader, 0, len(form.File[imagesParamKey])+len(form.File[imagesArrayKey]))
	files = append(files, form.File[imagesParamKey]...)
	files = append(files, form.File[imagesArrayKey]...)
	if len(files) == 0 {
		return nil, fmt.Errorf("no images provided")
	}

	if limit := h.config.Batch.MaxFiles; limit > 0 && len(files) > limit {
		return nil, fmt.Errorf("too many images: %d (maximum %d)", len(files), limit)
	}

	for _, fh := range files {
		if fh.Size > h.config.Storage.MaxFileSize {
			return nil, fmt.Errorf("file %s size %d exceeds maximum allowed size %d",
				fh.Filename, fh.Size, h.config.Storage.MaxFileSize)
		}
	}

	return files, nil
}

// === FILE OPERATIONS ===

// fileSources opens uploads lazily; only valid while the request is live.
func (h *BatchHandler) fileSources(files []*multipart.FileHeader) []models.SourceImage {
	sources := make([]models.SourceImage, len(files))
	for i, fh := range files {
		sources[i] = models.SourceImage{
			Filename: fh.Filename,
			Size:     fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		}
	}
	return sources
}

// readSources copies uploads into memory so they outlive the request.
func (h *BatchHandler) readSources(files []*multipart.FileHeader) ([]models.SourceImage, error) {
	sources := make([]models.SourceImage, 0, len(files))

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}

		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}

		if ct := utils.DetectContentType(data); !utils.IsValidImageType(ct) {
			h.logger.Debug("Upload does not look like an image",
				zap.String("filename", fh.Filename),
				zap.String("content_type", ct))
		}

		sources = append(sources, models.NewSourceImage(fh.Filename, data))
	}

	return sources, nil
}

// === RESPONSE HANDLING ===

func (h *BatchHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

func (h *BatchHandler) respondWithArchive(c *gin.Context, archive *models.Archive) {
	c.Header("Content-Disposition", utils.AttachmentDisposition(archive.Name))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, archive.ContentType(), archive.Data)
}

// handleBatchError writes the response for a failed or no-op batch and
// reports whether the caller should continue with res.
func (h *BatchHandler) handleBatchError(c *gin.Context, res *batch.Result, err error) bool {
	switch {
	case errors.Is(err, batch.ErrBusy):
		h.respondError(c, http.StatusConflict, "Another batch is being processed")
		return false
	case err != nil:
		// Details are logged by the orchestrator; the client only learns that it failed.
		h.respondError(c, http.StatusUnprocessableEntity, batchFailedMsg)
		return false
	case res == nil:
		h.respondError(c, http.StatusBadRequest, "Select images and size")
		return false
	}
	return true
}

// === UTILITY METHODS ===

func (h *BatchHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			return "unhealthy"
		}
	}
	return "healthy"
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}
