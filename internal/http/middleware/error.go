package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/phambaophuc/image-batch-crop/internal/models"
)

// ErrorHandler turns a panic in a handler into a 500 in the API envelope.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		logger.Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("route", ctx.FullPath()),
			zap.String("method", ctx.Request.Method),
			zap.String("batch_id", ctx.Param("id")),
			zap.Stack("stack"),
		)

		if ctx.Writer.Written() {
			// Part of an archive may already be on the wire.
			ctx.Abort()
			return
		}

		ctx.AbortWithStatusJSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "Internal server error",
		})
	})
}
