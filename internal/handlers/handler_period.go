package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/middleware"
)

// periodHandler handles HTTP requests for period close.
type periodHandler struct {
	periodService portssvc.PeriodSvcFacade
}

func newPeriodHandler(ps portssvc.PeriodSvcFacade) *periodHandler {
	return &periodHandler{periodService: ps}
}

// registerPeriodRoutes registers routes related to reporting periods.
func registerPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.PeriodSvcFacade) {
	h := newPeriodHandler(periodService)

	periods := rg.Group("/periods")
	{
		periods.GET("", h.listPeriods)
		periods.GET("/:periodKey", h.getPeriod)
		periods.GET("/:periodKey/close-preview", h.previewClose)
		periods.POST("/:periodKey/close", h.closePeriod)
	}
}

func (h *periodHandler) listPeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")

	periods, err := h.periodService.ListPeriods(c.Request.Context(), kindergartenID)
	if err != nil {
		logger.Error("Failed to list periods", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list periods"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"periods": periods})
}

func (h *periodHandler) getPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")

	periodKey, err := domain.ParsePeriodKey(c.Param("periodKey"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	period, err := h.periodService.GetPeriod(c.Request.Context(), kindergartenID, periodKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Period not found"})
		} else {
			logger.Error("Failed to get period", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve period"})
		}
		return
	}
	c.JSON(http.StatusOK, period)
}

func (h *periodHandler) previewClose(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")

	periodKey, err := domain.ParsePeriodKey(c.Param("periodKey"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	preview, err := h.periodService.PreviewClose(c.Request.Context(), kindergartenID, periodKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Period not found"})
		} else {
			logger.Error("Failed to preview close", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to preview close"})
		}
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (h *periodHandler) closePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")

	periodKey, err := domain.ParsePeriodKey(c.Param("periodKey"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.periodService.Close(c.Request.Context(), kindergartenID, periodKey, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPeriodClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "Period is already closed"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Period not found"})
		default:
			logger.Error("Failed to close period", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close period"})
		}
		return
	}

	logger.Info("Period closed",
		slog.String("kindergarten_id", kindergartenID),
		slog.String("period_key", periodKey.String()),
		slog.Int("locked_count", result.LockedCount))
	c.JSON(http.StatusOK, result)
}
