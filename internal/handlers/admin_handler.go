package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/wso2/consent-core-service/internal/models"
	"github.com/wso2/consent-core-service/internal/service"
	"github.com/wso2/consent-core-service/internal/utils"
	"github.com/wso2/consent-core-service/internal/validator"
)

// AdminHandler handles audit, history and validation HTTP requests
type AdminHandler struct {
	consentService   *service.ConsentService
	consentValidator validator.ConsentValidator
}

// NewAdminHandler creates a new admin handler instance
func NewAdminHandler(consentService *service.ConsentService, consentValidator validator.ConsentValidator) *AdminHandler {
	return &AdminHandler{
		consentService:   consentService,
		consentValidator: consentValidator,
	}
}

// SearchAuditRecords handles GET /consent-status-audit
func (h *AdminHandler) SearchAuditRecords(c *gin.Context) {
	params := &models.AuditSearchParams{
		ConsentIDs: splitQuery(c.Query("consentIds")),
		Status:     c.Query("status"),
		ActionBy:   c.Query("actionBy"),
		FromTime:   utils.ParseInt64Query(c, "fromTime"),
		ToTime:     utils.ParseInt64Query(c, "toTime"),
		Limit:      utils.ParseLimit(c),
		Offset:     utils.ParseOffset(c),
		OrgID:      utils.GetOrgIDFromContext(c),
	}

	records, total, err := h.consentService.SearchAuditRecords(c.Request.Context(), params)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, gin.H{
		"data": records,
		"metadata": models.ConsentSearchMetadata{
			Total:  total,
			Limit:  params.Limit,
			Offset: params.Offset,
		},
	})
}

// GetAmendmentHistory handles GET /consents/:consentId/history
func (h *AdminHandler) GetAmendmentHistory(c *gin.Context) {
	consentID := c.Param("consentId")
	orgID := utils.GetOrgIDFromContext(c)

	history, err := h.consentService.GetConsentAmendmentHistory(c.Request.Context(), consentID, orgID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, gin.H{"history": history})
}

// ValidateConsent handles POST /consents/:consentId/validate
func (h *AdminHandler) ValidateConsent(c *gin.Context) {
	var request models.ConsentValidateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	request.ConsentID = c.Param("consentId")
	orgID := utils.GetOrgIDFromContext(c)

	detailed, err := h.consentService.GetDetailedConsent(c.Request.Context(), request.ConsentID, orgID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	request.Consent = detailed

	result := h.consentValidator.Validate(c.Request.Context(), &request)
	if !result.IsValid {
		status := result.HTTPCode
		if status == 0 {
			status = models.HTTPStatusForErrorCode(result.ErrorCode)
		}
		c.JSON(status, result)
		return
	}

	utils.SendOKResponse(c, result)
}
