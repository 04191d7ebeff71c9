package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/phambaophuc/image-batch-crop/internal/http/handlers"
	"github.com/phambaophuc/image-batch-crop/internal/http/middleware"
)

type Router struct {
	batchHandler *handlers.BatchHandler
	logger       *zap.Logger
}

func NewRouter(
	batchHandler *handlers.BatchHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		batchHandler: batchHandler,
		logger:       logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.batchHandler.HealthCheck)
		v1.GET("/ratios", r.batchHandler.GetRatios)

		batches := v1.Group("/batches")
		{
			batches.POST("/archive", middleware.RequireMultipart(), r.batchHandler.CreateArchive)
			batches.POST("", middleware.RequireMultipart(), r.batchHandler.SubmitBatch)
			batches.GET("/:id", r.batchHandler.GetBatch)
			batches.GET("/:id/archive", r.batchHandler.DownloadBatch)
		}

		session := v1.Group("/session")
		{
			session.GET("", r.batchHandler.GetSession)
			session.POST("/images", middleware.RequireMultipart(), r.batchHandler.AddSessionImages)
			session.DELETE("/images", r.batchHandler.ClearSessionImages)
			session.PUT("/options", r.batchHandler.UpdateSessionOptions)
			session.POST("/archive", r.batchHandler.SubmitSession)
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Image batch cropping is running",
		})
	})

	return router
}
