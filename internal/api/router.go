package api

import (
	"github.com/gin-gonic/gin"
	"github.com/ozgun/catalogd/internal/api/handler"
	"github.com/ozgun/catalogd/internal/api/middleware"
	"github.com/ozgun/catalogd/internal/config"
	"github.com/ozgun/catalogd/internal/logger"
	"github.com/ozgun/catalogd/internal/repository"
	"github.com/ozgun/catalogd/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	ingestService *service.IngestService,
	catalogService *service.CatalogService,
	jobs *repository.JobRepository,
	log *logger.Logger,
	cfg *config.ServerConfig,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))
	r.Use(middleware.Identity())

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	uploadHandler := handler.NewUploadHandler(ingestService, log)
	productHandler := handler.NewProductHandler(catalogService)
	jobHandler := handler.NewJobHandler(jobs)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Feed ingestion
		v1.POST("/upload-products", uploadHandler.UploadProducts)

		// Catalog reads
		v1.GET("/products", productHandler.ListProducts)
		v1.GET("/products/:id", productHandler.GetProduct)
		v1.GET("/filter-options", productHandler.GetFilterOptions)

		// Notification jobs
		v1.GET("/jobs", jobHandler.ListJobs)
		v1.GET("/jobs/:id", jobHandler.GetJob)
	}

	return r
}
