package validator

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/wso2/consent-core-service/internal/config"
	client "github.com/wso2/consent-core-service/internal/extension-client"
	"github.com/wso2/consent-core-service/internal/models"
	"github.com/wso2/consent-core-service/pkg/utils"
)

// ConsentValidator validates whether a consent can be used to serve a data
// access request
type ConsentValidator interface {
	Validate(ctx context.Context, request *models.ConsentValidateRequest) *models.ConsentValidateResult
}

// DefaultConsentValidator performs the built-in ownership and lifecycle checks
// and then delegates to the external validation service when one is
// configured. Ownership failures are reported with distinct codes: a user
// mismatch is a forbidden access, a client mismatch is a malformed request.
type DefaultConsentValidator struct {
	extensionClient *client.ExtensionClient
	cfg             *config.Config
	logger          *logrus.Logger
}

// NewDefaultConsentValidator creates a new DefaultConsentValidator instance
func NewDefaultConsentValidator(extensionClient *client.ExtensionClient, cfg *config.Config, logger *logrus.Logger) *DefaultConsentValidator {
	return &DefaultConsentValidator{
		extensionClient: extensionClient,
		cfg:             cfg,
		logger:          logger,
	}
}

// Validate runs the built-in checks followed by the external extension point
func (v *DefaultConsentValidator) Validate(ctx context.Context, request *models.ConsentValidateRequest) *models.ConsentValidateResult {
	if request.Consent == nil {
		return invalid(models.ErrCodeConsentNotFound, "consent is not available for validation", http.StatusNotFound)
	}

	consent := request.Consent

	if request.UserID == "" {
		return invalid(models.ErrCodeValidationError, "userId is required for validation", http.StatusBadRequest)
	}

	if !consent.HasAuthorizedUser(request.UserID) {
		return invalid(models.ErrCodeUserIDMismatch, "user is not authorized to access this consent", http.StatusForbidden)
	}

	if request.ClientID != "" && consent.ClientID != request.ClientID {
		return invalid(models.ErrCodeClientIDMismatch, "client does not match the consent", http.StatusBadRequest)
	}

	if consent.CurrentStatus != v.cfg.Consent.Authorised() {
		return invalid(models.ErrCodeInvalidStatus, "consent is not in an authorized state", http.StatusBadRequest)
	}

	if consent.ValidityPeriod > 0 && utils.IsExpired(consent.ValidityPeriod) {
		return invalid(models.ErrCodeInvalidStatus, "consent has expired", http.StatusBadRequest)
	}

	if !v.extensionClient.Enabled() {
		return &models.ConsentValidateResult{IsValid: true}
	}

	return v.validateExternally(ctx, request)
}

// validateExternally forwards the validation request to the external service
// and maps its envelope into a validation result
func (v *DefaultConsentValidator) validateExternally(ctx context.Context, request *models.ConsentValidateRequest) *models.ConsentValidateResult {
	response, err := v.extensionClient.Invoke(ctx, models.ExtensionPointConsentValidation, request)
	if err != nil {
		v.logger.WithError(err).WithField("consent_id", request.ConsentID).Error("External consent validation failed")
		return invalid(models.ErrCodeExtensionError, "external validation service is unavailable", http.StatusInternalServerError)
	}

	if !response.IsSuccess() {
		result := invalid(response.ErrorCode, response.ErrorMessage, http.StatusBadRequest)
		if result.ErrorCode == "" {
			result.ErrorCode = models.ErrCodeExtensionError
		}
		return result
	}

	result := &models.ConsentValidateResult{IsValid: true}

	if len(response.Data) > 0 {
		var data struct {
			ModifiedPayload    interface{}            `json:"modifiedPayload"`
			ConsentInformation map[string]interface{} `json:"consentInformation"`
		}
		if err := json.Unmarshal(response.Data, &data); err != nil {
			v.logger.WithError(err).Warn("Failed to parse external validation data")
		} else {
			result.ModifiedPayload = data.ModifiedPayload
			result.ConsentInformation = data.ConsentInformation
		}
	}

	return result
}

func invalid(code, message string, httpCode int) *models.ConsentValidateResult {
	return &models.ConsentValidateResult{
		IsValid:      false,
		ErrorCode:    code,
		ErrorMessage: message,
		HTTPCode:     httpCode,
	}
}
