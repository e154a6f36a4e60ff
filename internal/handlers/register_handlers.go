package handlers

import (
	"github.com/gin-gonic/gin"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/middleware"
	"github.com/haneulsoft/kinderledger/internal/platform/config"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	transmitLimiter *limiter.Limiter,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services, transmitLimiter)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	transmitLimiter *limiter.Limiter,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerChartRoutes(v1, services.Chart)

	// Everything ledger-shaped is scoped to one kindergarten.
	kg := v1.Group("/kindergartens/:kindergartenID")
	registerEntryRoutes(kg, services.Ledger, services.Splitter)
	registerImportRoutes(kg, services.Importer)
	registerPeriodRoutes(kg, services.Period)
	registerTransmitRoutes(kg, services.Transmitter, transmitLimiter)
	registerCredentialRoutes(kg, services.Credential)
	registerMappingRoutes(kg, services.Chart)
	registerReportingRoutes(kg, services.Reporting)
}
