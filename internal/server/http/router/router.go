package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/printshop/internal/metrics"
	"github.com/polkiloo/printshop/internal/server/http/handlers"
	"github.com/polkiloo/printshop/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.PrintFacade, reg *metrics.Registry, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithDecompressFn(gzip.DefaultDecompressHandle),
		gzip.WithExcludedPaths([]string{"/api/previews"}),
	))

	orderHandler := handlers.NewOrderHandler(facade)
	designHandler := handlers.NewDesignHandler(facade)
	previewHandler := handlers.NewPreviewHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/healthz", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(reg.Handler()))

	api := engine.Group("/api")
	orders := api.Group("/orders")
	orders.POST("", orderHandler.Create)
	orders.GET("/:id", orderHandler.Get)
	orders.POST("/:id/design", designHandler.Upload)
	orders.POST("/:id/convert", designHandler.Convert)

	previews := api.Group("/previews")
	previews.GET("/:kind/:id", previewHandler.Serve)
	previews.GET("/:kind/:id/link", previewHandler.Link)

	return engine
}
