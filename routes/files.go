package routes

import (
	"errors"
	"io"
	"net/http"
	"time"

	"docuchat-backend/internal/config"
	"docuchat-backend/internal/extract"
	"docuchat-backend/internal/ingest"
	"docuchat-backend/internal/store"
	"docuchat-backend/internal/telemetry"
	"docuchat-backend/middleware"
	"docuchat-backend/models"
	"docuchat-backend/utils"

	"github.com/gin-gonic/gin"
)

// SetupFileRoutes wires the authenticated document endpoints: the per-user
// upload log and the upload entry point of the ingestion pipeline.
func SetupFileRoutes(router *gin.Engine, cfg *config.Config, authMW *middleware.AuthMiddleware,
	pipeline *ingest.Pipeline, documents store.DocumentLog, metrics *telemetry.Metrics) {

	api := router.Group("/api")
	api.Use(authMW.RequireAuth())

	// List the caller's upload history, oldest first.
	api.GET("/files", func(c *gin.Context) {
		owner := middleware.GetUsername(c)

		docs, err := documents.List(c.Request.Context(), owner)
		if err != nil {
			if errors.Is(err, store.ErrStorageUnavailable) {
				utils.RespondWithServiceUnavailable(c, "Document store is unavailable")
				return
			}
			utils.RespondWithInternalError(c, "Failed to list documents", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{"files": docs})
	})

	// Upload a document. The whole pipeline runs synchronously: when this
	// returns 200 the new chunk set is queryable.
	api.POST("/upload", func(c *gin.Context) {
		owner := middleware.GetUsername(c)

		fileHeader, err := c.FormFile("document")
		if err != nil {
			utils.RespondWithBadRequest(c, "No document part in request", nil)
			return
		}
		if fileHeader.Filename == "" {
			utils.RespondWithBadRequest(c, "No file selected", nil)
			return
		}
		if cfg.MaxFileSize > 0 && fileHeader.Size > cfg.MaxFileSize {
			utils.RespondWithError(c, http.StatusRequestEntityTooLarge,
				"file_too_large", "File exceeds the maximum upload size",
				gin.H{"max_bytes": cfg.MaxFileSize})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read upload", nil)
			return
		}
		defer file.Close()

		raw, err := io.ReadAll(file)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read upload", nil)
			return
		}

		start := time.Now()
		count, err := pipeline.Ingest(c.Request.Context(), owner, fileHeader.Filename, raw)
		if err != nil {
			metrics.RecordIngest(time.Since(start).Seconds(), 0, "error")

			switch {
			case errors.Is(err, extract.ErrUnsupportedFormat):
				utils.RespondWithBadRequest(c, "Unsupported file type. Allowed: .txt, .pdf, .docx", nil)
			case errors.Is(err, ingest.ErrExtractionFailed):
				utils.RespondWithError(c, http.StatusUnprocessableEntity,
					"extraction_failed", "Could not extract text from the document", nil)
			case errors.Is(err, store.ErrStorageUnavailable):
				utils.RespondWithServiceUnavailable(c, "Document store is unavailable")
			default:
				utils.RespondWithInternalError(c, "Failed to process document", nil)
			}
			return
		}

		metrics.RecordIngest(time.Since(start).Seconds(), int64(count), "success")

		c.JSON(http.StatusOK, models.UploadResponse{
			Status:        "success",
			Message:       "Document indexed",
			Filename:      fileHeader.Filename,
			FragmentCount: count,
		})
	})
}
