package router

import (
	"github.com/gin-gonic/gin"

	"github.com/wso2/consent-core-service/internal/config"
	"github.com/wso2/consent-core-service/internal/database"
	"github.com/wso2/consent-core-service/internal/handlers"
	"github.com/wso2/consent-core-service/internal/service"
	"github.com/wso2/consent-core-service/internal/utils"
	"github.com/wso2/consent-core-service/internal/validator"
)

// SetupRouter configures all API routes
func SetupRouter(
	consentService *service.ConsentService,
	idempotency *service.IdempotencyValidator,
	consentValidator validator.ConsentValidator,
	db *database.DB,
	cfg *config.Config,
) *gin.Engine {
	router := gin.Default()

	// Global middleware to extract caller identity headers into the context
	router.Use(func(c *gin.Context) {
		if orgID := c.GetHeader("org-id"); orgID != "" {
			utils.SetContextValue(c, "orgID", orgID)
		}
		if clientID := c.GetHeader("client-id"); clientID != "" {
			utils.SetContextValue(c, "clientID", clientID)
		}
		if userID := c.GetHeader("user-id"); userID != "" {
			utils.SetContextValue(c, "userID", userID)
		}
		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(503, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "healthy"})
	})

	consentHandler := handlers.NewConsentHandler(consentService, idempotency, cfg)
	authorizationHandler := handlers.NewAuthorizationHandler(consentService)
	adminHandler := handlers.NewAdminHandler(consentService, consentValidator)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/consent-status-audit", adminHandler.SearchAuditRecords)

		consents := v1.Group("/consents")
		{
			consents.POST("", consentHandler.CreateConsent)
			consents.POST("/exclusive", consentHandler.CreateExclusiveConsent)
			consents.GET("", consentHandler.SearchConsents)
			consents.GET("/:consentId", consentHandler.GetConsent)
			consents.PUT("/:consentId", consentHandler.AmendConsent)
			consents.POST("/:consentId/revoke", consentHandler.RevokeConsent)
			consents.PUT("/:consentId/status", consentHandler.UpdateConsentStatus)

			consents.POST("/:consentId/bind", authorizationHandler.BindUserAccounts)
			consents.POST("/:consentId/reauthorize", authorizationHandler.ReauthorizeConsent)

			consents.PUT("/:consentId/attributes", consentHandler.UpdateConsentAttributes)
			consents.DELETE("/:consentId/attributes", consentHandler.DeleteConsentAttributes)

			consents.POST("/:consentId/file", consentHandler.StoreConsentFile)
			consents.GET("/:consentId/file", consentHandler.GetConsentFile)

			consents.GET("/:consentId/history", adminHandler.GetAmendmentHistory)
			consents.POST("/:consentId/validate", adminHandler.ValidateConsent)
		}
	}

	return router
}
