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

// credentialHandler handles HTTP requests for portal credentials. There is
// deliberately no read route: stored secrets are write-only from the API's
// point of view.
type credentialHandler struct {
	credentialService portssvc.CredentialSvcFacade
}

func newCredentialHandler(cs portssvc.CredentialSvcFacade) *credentialHandler {
	return &credentialHandler{credentialService: cs}
}

func registerCredentialRoutes(rg *gin.RouterGroup, credentialService portssvc.CredentialSvcFacade) {
	h := newCredentialHandler(credentialService)
	rg.PUT("/credential", h.upsertCredential)
}

func (h *credentialHandler) upsertCredential(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kindergartenID := c.Param("kindergartenID")

	var req dto.UpsertCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// The bind error may quote field names but never the secret value.
		logger.Warn("Failed to bind JSON for upsertCredential")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.credentialService.UpsertCredential(c.Request.Context(), kindergartenID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to store credential", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store credential"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}
