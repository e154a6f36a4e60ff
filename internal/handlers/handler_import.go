package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/dto"
	"github.com/haneulsoft/kinderledger/internal/feeds"
	"github.com/haneulsoft/kinderledger/internal/middleware"
)

// importHandler handles HTTP requests for the import pipeline.
type importHandler struct {
	importService portssvc.ImportSvcFacade
}

func newImportHandler(is portssvc.ImportSvcFacade) *importHandler {
	return &importHandler{importService: is}
}

// registerImportRoutes registers routes related to transaction imports.
func registerImportRoutes(rg *gin.RouterGroup, importService portssvc.ImportSvcFacade) {
	h := newImportHandler(importService)

	imports := rg.Group("/imports")
	{
		imports.POST("/batch", h.importBatch)
		imports.POST("/upload", h.importUpload)
		imports.POST("/sync", h.syncFeed)
		imports.POST("/copy-previous", h.copyPrevious)
	}
}

func (h *importHandler) importBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")

	var req dto.ImportBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for importBatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	periodKey, err := domain.ParsePeriodKey(req.PeriodKey)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidates := make([]domain.ExternalTransaction, 0, len(req.Candidates))
	for _, candidate := range req.Candidates {
		candidates = append(candidates, candidate.ToDomain())
	}

	summary, err := h.importService.ImportBatch(c.Request.Context(), kindergartenID, periodKey, candidates, userID)
	if err != nil {
		h.respondImportError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// importUpload accepts a multipart CSV file and runs it through the same
// batch pipeline as JSON candidates.
func (h *importHandler) importUpload(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")

	periodKey, err := domain.ParsePeriodKey(c.PostForm("periodKey"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	candidates, err := feeds.ParseSpreadsheet(file)
	if err != nil {
		logger.Warn("Failed to parse uploaded CSV", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(candidates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Uploaded file contains no rows"})
		return
	}

	summary, err := h.importService.ImportBatch(c.Request.Context(), kindergartenID, periodKey, candidates, userID)
	if err != nil {
		h.respondImportError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *importHandler) syncFeed(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")

	var req dto.SyncFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for syncFeed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	periodKey, err := domain.ParsePeriodKey(req.PeriodKey)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.importService.SyncFeed(c.Request.Context(), kindergartenID, req.Feed, periodKey, req.Since, userID)
	if err != nil {
		h.respondImportError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *importHandler) copyPrevious(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")

	var req dto.CopyPreviousRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for copyPrevious", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	periodKey, err := domain.ParsePeriodKey(req.PeriodKey)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.importService.CopyFromPreviousPeriod(c.Request.Context(), kindergartenID, periodKey, req.EntryIDs, userID)
	if err != nil {
		h.respondImportError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *importHandler) respondImportError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrPeriodClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "Period is closed"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.Error("Import failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Import failed"})
	}
}
