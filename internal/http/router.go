package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version, cfg.DetectDevice)
	booksController := NewBooksController(cfg.Books, cfg.Settings)
	exportController := NewExportController(cfg.Exporter, cfg.TaskQueue, cfg.Runs, cfg.Books)
	settingsController := NewSettingsController(cfg.Settings)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Books API endpoints
	router.GET("/api/books", booksController.GetAllBooks)
	router.GET("/api/books/stats", booksController.GetBookStats)
	router.GET("/api/books/highlights", booksController.GetBookHighlights)
	router.GET("/api/highlights/search", booksController.SearchHighlights)
	router.GET("/books/view", booksController.ViewBook)

	// Export endpoints
	router.POST("/api/export", exportController.RunExport)
	router.GET("/api/runs", exportController.ListRuns)
	router.GET("/api/runs/:id", exportController.GetRun)
	if cfg.TaskQueue != nil {
		router.GET("/api/tasks/:id", exportController.GetTaskStatus)
	}

	// Settings endpoints
	router.GET("/api/settings", settingsController.GetSettings)
	router.PUT("/api/settings/:key", settingsController.UpdateSetting)
	router.DELETE("/api/settings/:key", settingsController.ResetSetting)

	return router
}
