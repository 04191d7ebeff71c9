package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes one entry per request. Client errors log at warn and
// server errors at error; health probes drop to debug.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		status := ctx.Writer.Status()
		fields := []zap.Field{
			zap.String("method", ctx.Request.Method),
			zap.String("route", ctx.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.Int("body_size", ctx.Writer.Size()),
			zap.String("client_ip", ctx.ClientIP()),
		}
		if id := ctx.Param("id"); id != "" {
			fields = append(fields, zap.String("batch_id", id))
		}
		if ctx.Request.MultipartForm != nil {
			fields = append(fields, zap.Int("uploads", countUploads(ctx)))
		}

		if ce := logger.Check(requestLevel(ctx.FullPath(), status), "HTTP Request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func requestLevel(route string, status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	case route == "/api/v1/health":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func countUploads(ctx *gin.Context) int {
	n := 0
	for _, files := range ctx.Request.MultipartForm.File {
		n += len(files)
	}
	return n
}
