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

// chartHandler handles HTTP requests for the chart of accounts and
// categorization rules. These are shared reference data, not scoped to a
// single kindergarten.
type chartHandler struct {
	chartService portssvc.ChartSvcFacade
}

func newChartHandler(cs portssvc.ChartSvcFacade) *chartHandler {
	return &chartHandler{chartService: cs}
}

// registerChartRoutes registers routes related to reference configuration.
func registerChartRoutes(rg *gin.RouterGroup, chartService portssvc.ChartSvcFacade) {
	h := newChartHandler(chartService)

	accounts := rg.Group("/account-codes")
	{
		accounts.POST("", h.createAccountCode)
		accounts.GET("", h.listAccountCodes)
	}

	rules := rg.Group("/keyword-rules")
	{
		rules.POST("", h.createKeywordRule)
		rules.GET("", h.listKeywordRules)
	}
}

// registerMappingRoutes registers the per-kindergarten default mapping route.
func registerMappingRoutes(rg *gin.RouterGroup, chartService portssvc.ChartSvcFacade) {
	h := newChartHandler(chartService)
	rg.PUT("/default-mapping", h.setDefaultMapping)
}

func (h *chartHandler) createAccountCode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAccountCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createAccountCode", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.chartService.CreateAccountCode(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create account code", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account code"})
		}
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (h *chartHandler) listAccountCodes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accounts, err := h.chartService.ListAccountCodes(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list account codes", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list account codes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accountCodes": accounts})
}

func (h *chartHandler) createKeywordRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateKeywordRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createKeywordRule", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rule, err := h.chartService.CreateKeywordRule(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Target account does not exist"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create keyword rule", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create keyword rule"})
		}
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (h *chartHandler) listKeywordRules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	rules, err := h.chartService.ListKeywordRules(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list keyword rules", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list keyword rules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keywordRules": rules})
}

func (h *chartHandler) setDefaultMapping(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")

	var req dto.SetDefaultMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for setDefaultMapping", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.chartService.SetDefaultMapping(c.Request.Context(), kindergartenID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Mapped account does not exist"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to set default mapping", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set default mapping"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}
