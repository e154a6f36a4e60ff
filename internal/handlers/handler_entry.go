package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/haneulsoft/kinderledger/internal/apperrors"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/dto"
	"github.com/haneulsoft/kinderledger/internal/middleware"
)

// entryHandler handles HTTP requests for ledger entries.
type entryHandler struct {
	ledgerService portssvc.LedgerSvcFacade
	splitService  portssvc.SplitSvcFacade
}

func newEntryHandler(ls portssvc.LedgerSvcFacade, ss portssvc.SplitSvcFacade) *entryHandler {
	return &entryHandler{ledgerService: ls, splitService: ss}
}

// registerEntryRoutes registers routes related to ledger entries.
func registerEntryRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, splitService portssvc.SplitSvcFacade) {
	h := newEntryHandler(ledgerService, splitService)

	entries := rg.Group("/entries")
	{
		entries.GET("", h.listEntries)
		entries.GET("/:entryID", h.getEntry)
		entries.PUT("/:entryID/account", h.rejournalEntry)
		entries.DELETE("/:entryID", h.deleteEntry)
		entries.POST("/:entryID/split", h.splitEntry)
	}
}

func (h *entryHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	resp, err := h.ledgerService.ListEntries(c.Request.Context(), kindergartenID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list entries", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entries"})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *entryHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")
	entryID := c.Param("entryID")

	entry, err := h.ledgerService.GetEntry(c.Request.Context(), kindergartenID, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		} else {
			logger.Error("Failed to get entry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve entry"})
		}
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *entryHandler) rejournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")
	entryID := c.Param("entryID")

	var req dto.RejournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for rejournalEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.ledgerService.RejournalEntry(c.Request.Context(), kindergartenID, entryID, req.AccountID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrPeriodLocked):
			c.JSON(http.StatusConflict, gin.H{"error": "Entry belongs to a closed period"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to rejournal entry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update entry"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *entryHandler) deleteEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")
	entryID := c.Param("entryID")

	err := h.ledgerService.DeleteEntry(c.Request.Context(), kindergartenID, entryID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		case errors.Is(err, apperrors.ErrPeriodLocked):
			c.JSON(http.StatusConflict, gin.H{"error": "Entry belongs to a closed period"})
		default:
			logger.Error("Failed to delete entry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete entry"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *entryHandler) splitEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")
	entryID := c.Param("entryID")

	var req dto.SplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for splitEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	splits, err := h.splitService.SplitEntry(c.Request.Context(), kindergartenID, entryID, req, userID)
	if err != nil {
		var mismatch *apperrors.SplitMismatchError
		switch {
		case errors.As(err, &mismatch):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": mismatch.Error(),
				"detail": dto.SplitMismatchDetail{
					SourceAmount: mismatch.SourceAmount,
					Allocated:    mismatch.Allocated,
					Difference:   mismatch.Difference(),
				},
			})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrPeriodLocked):
			c.JSON(http.StatusConflict, gin.H{"error": "Entry belongs to a closed period"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to split entry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to split entry"})
		}
		return
	}

	logger.Info("Entry split", slog.String("entry_id", entryID), slog.Int("split_count", len(splits)))
	c.JSON(http.StatusCreated, gin.H{"entries": splits})
}
