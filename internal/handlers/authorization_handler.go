package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/wso2/consent-core-service/internal/models"
	"github.com/wso2/consent-core-service/internal/service"
	"github.com/wso2/consent-core-service/internal/utils"
)

// AuthorizationHandler handles authorization flow HTTP requests
type AuthorizationHandler struct {
	consentService *service.ConsentService
}

// NewAuthorizationHandler creates a new authorization handler instance
func NewAuthorizationHandler(consentService *service.ConsentService) *AuthorizationHandler {
	return &AuthorizationHandler{consentService: consentService}
}

// BindUserAccounts handles POST /consents/:consentId/bind
func (h *AuthorizationHandler) BindUserAccounts(c *gin.Context) {
	var request models.BindUserAccountsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	consentID := c.Param("consentId")
	orgID := utils.GetOrgIDFromContext(c)

	detailed, err := h.consentService.BindUserAccounts(c.Request.Context(), &request, consentID, orgID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, detailed)
}

// ReauthorizeConsent handles POST /consents/:consentId/reauthorize
func (h *AuthorizationHandler) ReauthorizeConsent(c *gin.Context) {
	var request models.ReauthorizeConsentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	consentID := c.Param("consentId")
	orgID := utils.GetOrgIDFromContext(c)

	detailed, err := h.consentService.ReauthorizeConsent(c.Request.Context(), &request, consentID, orgID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, detailed)
}
