package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wso2/consent-core-service/internal/config"
	"github.com/wso2/consent-core-service/internal/models"
	"github.com/wso2/consent-core-service/internal/service"
	"github.com/wso2/consent-core-service/internal/utils"
)

// ConsentHandler handles consent-related HTTP requests
type ConsentHandler struct {
	consentService *service.ConsentService
	idempotency    *service.IdempotencyValidator
	cfg            *config.Config
}

// NewConsentHandler creates a new consent handler instance
func NewConsentHandler(consentService *service.ConsentService, idempotency *service.IdempotencyValidator, cfg *config.Config) *ConsentHandler {
	return &ConsentHandler{
		consentService: consentService,
		idempotency:    idempotency,
		cfg:            cfg,
	}
}

// CreateConsent handles POST /consents
func (h *ConsentHandler) CreateConsent(c *gin.Context) {
	var request models.ConsentCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	orgID := utils.GetOrgIDFromContext(c)
	clientID := utils.GetClientIDFromContext(c)

	idempotencyKey := c.GetHeader(h.cfg.Idempotency.KeyHeaderName)
	if idempotencyKey != "" {
		result, err := h.idempotency.Validate(c.Request.Context(), orgID, idempotencyKey, clientID, request.Receipt)
		if err != nil {
			utils.SendServiceError(c, err)
			return
		}

		if result.IsIdempotent {
			if !result.IsValid {
				utils.SendConflictError(c, models.ErrCodeIdempotencyViolation,
					"idempotency key reused with a conflicting request")
				return
			}
			utils.SendOKResponse(c, result.Consent)
			return
		}

		if request.Attributes == nil {
			request.Attributes = make(map[string]string)
		}
		request.Attributes[h.idempotency.AttributeName()] = idempotencyKey
	}

	detailed, err := h.consentService.CreateConsent(c.Request.Context(), &request, clientID, orgID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendCreatedResponse(c, detailed)
}

// CreateExclusiveConsent handles POST /consents/exclusive
func (h *ConsentHandler) CreateExclusiveConsent(c *gin.Context) {
	var request models.ExclusiveConsentCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	orgID := utils.GetOrgIDFromContext(c)
	clientID := utils.GetClientIDFromContext(c)

	detailed, err := h.consentService.CreateExclusiveConsent(c.Request.Context(), &request, clientID, orgID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendCreatedResponse(c, detailed)
}

// GetConsent handles GET /consents/:consentId
func (h *ConsentHandler) GetConsent(c *gin.Context) {
	consentID := c.Param("consentId")
	orgID := utils.GetOrgIDFromContext(c)

	detailed, err := h.consentService.GetDetailedConsent(c.Request.Context(), consentID, orgID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, detailed)
}

// SearchConsents handles GET /consents
func (h *ConsentHandler) SearchConsents(c *gin.Context) {
	params := &models.ConsentSearchParams{
		ConsentIDs:      splitQuery(c.Query("consentIds")),
		ClientIDs:       splitQuery(c.Query("clientIds")),
		ConsentTypes:    splitQuery(c.Query("consentTypes")),
		ConsentStatuses: splitQuery(c.Query("consentStatuses")),
		UserIDs:         splitQuery(c.Query("userIds")),
		AttributeKey:    c.Query("attributeKey"),
		AttributeValue:  c.Query("attributeValue"),
		FromTime:        utils.ParseInt64Query(c, "fromTime"),
		ToTime:          utils.ParseInt64Query(c, "toTime"),
		Limit:           utils.ParseLimit(c),
		Offset:          utils.ParseOffset(c),
		OrgID:           utils.GetOrgIDFromContext(c),
	}

	response, err := h.consentService.SearchDetailedConsents(c.Request.Context(), params)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, response)
}

// AmendConsent handles PUT /consents/:consentId
func (h *ConsentHandler) AmendConsent(c *gin.Context) {
	var request models.ConsentAmendRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	consentID := c.Param("consentId")
	orgID := utils.GetOrgIDFromContext(c)

	detailed, err := h.consentService.AmendConsent(c.Request.Context(), &request, consentID, orgID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, detailed)
}

// RevokeConsent handles POST /consents/:consentId/revoke
func (h *ConsentHandler) RevokeConsent(c *gin.Context) {
	var request models.ConsentRevokeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	consentID := c.Param("consentId")
	orgID := utils.GetOrgIDFromContext(c)

	detailed, err := h.consentService.RevokeConsent(c.Request.Context(), &request, consentID, orgID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, detailed)
}

// UpdateConsentStatus handles PUT /consents/:consentId/status
func (h *ConsentHandler) UpdateConsentStatus(c *gin.Context) {
	var request struct {
		Status   string `json:"status" binding:"required"`
		ActionBy string `json:"actionBy,omitempty"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	consentID := c.Param("consentId")
	orgID := utils.GetOrgIDFromContext(c)

	actionBy := request.ActionBy
	if actionBy == "" {
		actionBy = utils.GetClientIDFromContext(c)
	}

	if err := h.consentService.UpdateConsentStatus(c.Request.Context(), consentID, orgID, request.Status, actionBy); err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendNoContentResponse(c)
}

// UpdateConsentAttributes handles PUT /consents/:consentId/attributes
func (h *ConsentHandler) UpdateConsentAttributes(c *gin.Context) {
	var request struct {
		Attributes map[string]string `json:"attributes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	consentID := c.Param("consentId")
	orgID := utils.GetOrgIDFromContext(c)

	updated, err := h.consentService.UpdateConsentAttributes(c.Request.Context(), consentID, orgID, request.Attributes)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, gin.H{"attributes": updated})
}

// DeleteConsentAttributes handles DELETE /consents/:consentId/attributes
func (h *ConsentHandler) DeleteConsentAttributes(c *gin.Context) {
	keys := splitQuery(c.Query("keys"))
	if len(keys) == 0 {
		utils.SendValidationError(c, "keys query parameter is required")
		return
	}

	consentID := c.Param("consentId")
	orgID := utils.GetOrgIDFromContext(c)

	if err := h.consentService.DeleteConsentAttributes(c.Request.Context(), consentID, orgID, keys); err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendNoContentResponse(c)
}

// StoreConsentFile handles POST /consents/:consentId/file
func (h *ConsentHandler) StoreConsentFile(c *gin.Context) {
	var request models.ConsentFileUploadRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	consentID := c.Param("consentId")
	orgID := utils.GetOrgIDFromContext(c)

	if err := h.consentService.StoreConsentFile(c.Request.Context(), &request, consentID, orgID); err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendNoContentResponse(c)
}

// GetConsentFile handles GET /consents/:consentId/file
func (h *ConsentHandler) GetConsentFile(c *gin.Context) {
	consentID := c.Param("consentId")
	orgID := utils.GetOrgIDFromContext(c)

	file, err := h.consentService.GetConsentFile(c.Request.Context(), consentID, orgID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, file)
}

// splitQuery splits a comma separated query value into its parts
func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
