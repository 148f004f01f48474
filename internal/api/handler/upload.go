package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ozgun/catalogd/internal/api/middleware"
	"github.com/ozgun/catalogd/internal/feed"
	"github.com/ozgun/catalogd/internal/logger"
	"github.com/ozgun/catalogd/internal/repository"
	"github.com/ozgun/catalogd/internal/service"
)

// UploadHandler handles product feed uploads.
type UploadHandler struct {
	ingestService *service.IngestService
	logger        *logger.Logger
}

// NewUploadHandler creates a new upload handler.
// Parameters:
//   - ingestService: ingest service instance.
//   - log: logger instance.
// Returns:
//   - *UploadHandler: initialized handler.
func NewUploadHandler(ingestService *service.IngestService, log *logger.Logger) *UploadHandler {
	return &UploadHandler{
		ingestService: ingestService,
		logger:        log,
	}
}

// log returns a logger from Gin context if available, otherwise returns the default logger
func (h *UploadHandler) log(c *gin.Context) *logger.Logger {
	if l := logger.FromContext(c.Request.Context()); l != nil {
		return l
	}
	return h.logger
}

// UploadProducts handles POST /api/v1/upload-products.
// The feed XML arrives as a multipart form file under the "file" field.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *UploadHandler) UploadProducts(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Multipart file field 'file' is required",
		})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to open uploaded file: " + err.Error(),
		})
		return
	}
	defer f.Close()

	uploadedBy := middleware.CallerIdentity(c)
	if uploadedBy == "" {
		uploadedBy = "anonymous"
	}

	summary, err := h.ingestService.Ingest(c.Request.Context(), uploadedBy, fileHeader.Filename, f)
	if err != nil {
		var malformed *feed.MalformedInputError
		if errors.As(err, &malformed) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Malformed feed: " + malformed.Error(),
				"summary": summary,
			})
			return
		}

		h.log(c).WithError(err).Error("Upload run failed")

		var persistence *repository.PersistenceError
		if errors.As(err, &persistence) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to persist products: " + persistence.Error(),
				"summary": summary,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Upload failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Feed processed",
		"summary": summary,
	})
}
