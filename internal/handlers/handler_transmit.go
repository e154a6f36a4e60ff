package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/dto"
	"github.com/haneulsoft/kinderledger/internal/middleware"
	"github.com/ulule/limiter/v3"
)

// retryBackoff is the base delay between transmission retry passes.
var retryBackoff = 2 * time.Second

// transmitHandler handles HTTP requests for portal transmission.
type transmitHandler struct {
	transmitService portssvc.TransmitSvcFacade
}

func newTransmitHandler(ts portssvc.TransmitSvcFacade) *transmitHandler {
	return &transmitHandler{transmitService: ts}
}

// registerTransmitRoutes registers the transmission routes. They sit behind
// a rate limiter: every call can open a session against the external portal.
func registerTransmitRoutes(rg *gin.RouterGroup, transmitService portssvc.TransmitSvcFacade, transmitLimiter *limiter.Limiter) {
	h := newTransmitHandler(transmitService)

	transmissions := rg.Group("/transmissions", middleware.RateLimit(transmitLimiter))
	{
		transmissions.POST("", h.transmit)
	}
	rg.GET("/entries/:entryID/attempts", h.listAttempts)
}

// transmit drives a transmission run, optionally re-driving the failed
// subset up to MaxRetries times with linear backoff.
func (h *transmitHandler) transmit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")

	var req dto.TransmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for transmit", slog.String("error", err.Error()))
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

	ctx := c.Request.Context()
	summary, err := h.transmitService.Transmit(ctx, kindergartenID, periodKey, req.EntryIDs, userID)
	if err != nil {
		h.respondTransmitError(c, logger, err)
		return
	}

	for attempt := 1; attempt <= req.MaxRetries && len(summary.Failures) > 0; attempt++ {
		if err := sleepCtx(ctx, time.Duration(attempt)*retryBackoff); err != nil {
			break
		}
		logger.Info("Retrying failed transmissions",
			slog.Int("attempt", attempt),
			slog.Int("remaining", len(summary.Failures)))

		retry, err := h.transmitService.Transmit(ctx, kindergartenID, periodKey, summary.FailedEntryIDs(), userID)
		if err != nil {
			// Keep what earlier passes achieved; report the stale failures.
			logger.Warn("Retry pass aborted", slog.String("error", err.Error()))
			break
		}
		summary.Merge(*retry)
	}

	c.JSON(http.StatusOK, summary)
}

func (h *transmitHandler) listAttempts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")
	entryID := c.Param("entryID")

	attempts, err := h.transmitService.ListAttempts(c.Request.Context(), kindergartenID, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		} else {
			logger.Error("Failed to list attempts", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list attempts"})
		}
		return
	}

	out := make([]dto.AttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		out = append(out, dto.FromAttempt(attempt))
	}
	c.JSON(http.StatusOK, gin.H{"attempts": out})
}

func (h *transmitHandler) respondTransmitError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrTransmissionBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "A transmission for this kindergarten is already running"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client went away mid-run; best effort response.
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "Transmission interrupted"})
	default:
		logger.Error("Transmission failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transmission failed"})
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
