package validator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/consent-core-service/internal/config"
	client "github.com/wso2/consent-core-service/internal/extension-client"
	"github.com/wso2/consent-core-service/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func newValidator(extensionCfg *config.ServiceExtensionConfig) *DefaultConsentValidator {
	if extensionCfg == nil {
		extensionCfg = &config.ServiceExtensionConfig{}
	}
	logger := testLogger()
	return NewDefaultConsentValidator(client.NewExtensionClient(extensionCfg, logger), &config.Config{}, logger)
}

func authorizedConsent() *models.DetailedConsentResource {
	return &models.DetailedConsentResource{
		ConsentID:     "CONSENT-1",
		ClientID:      "client-1",
		CurrentStatus: "Authorised",
		AuthorizationResources: []models.AuthResource{
			{AuthID: "AUTH-1", ConsentID: "CONSENT-1", UserID: "user-1", AuthStatus: models.AuthStatusApproved},
		},
	}
}

func TestValidate_MissingConsent(t *testing.T) {
	v := newValidator(nil)

	result := v.Validate(context.Background(), &models.ConsentValidateRequest{UserID: "user-1"})

	assert.False(t, result.IsValid)
	assert.Equal(t, models.ErrCodeConsentNotFound, result.ErrorCode)
	assert.Equal(t, http.StatusNotFound, result.HTTPCode)
}

func TestValidate_MissingUserID(t *testing.T) {
	v := newValidator(nil)

	result := v.Validate(context.Background(), &models.ConsentValidateRequest{Consent: authorizedConsent()})

	assert.False(t, result.IsValid)
	assert.Equal(t, models.ErrCodeValidationError, result.ErrorCode)
	assert.Equal(t, http.StatusBadRequest, result.HTTPCode)
}

func TestValidate_UserMismatchIsForbidden(t *testing.T) {
	v := newValidator(nil)

	request := &models.ConsentValidateRequest{
		UserID:  "intruder",
		Consent: authorizedConsent(),
	}

	result := v.Validate(context.Background(), request)

	assert.False(t, result.IsValid)
	assert.Equal(t, models.ErrCodeUserIDMismatch, result.ErrorCode)
	assert.Equal(t, http.StatusForbidden, result.HTTPCode)
}

func TestValidate_ClientMismatchIsBadRequest(t *testing.T) {
	v := newValidator(nil)

	request := &models.ConsentValidateRequest{
		UserID:   "user-1",
		ClientID: "client-other",
		Consent:  authorizedConsent(),
	}

	result := v.Validate(context.Background(), request)

	assert.False(t, result.IsValid)
	assert.Equal(t, models.ErrCodeClientIDMismatch, result.ErrorCode)
	assert.Equal(t, http.StatusBadRequest, result.HTTPCode)
}

func TestValidate_NonAuthorizedStatus(t *testing.T) {
	v := newValidator(nil)

	consent := authorizedConsent()
	consent.CurrentStatus = "Revoked"
	request := &models.ConsentValidateRequest{UserID: "user-1", Consent: consent}

	result := v.Validate(context.Background(), request)

	assert.False(t, result.IsValid)
	assert.Equal(t, models.ErrCodeInvalidStatus, result.ErrorCode)
}

func TestValidate_ExpiredConsent(t *testing.T) {
	v := newValidator(nil)

	consent := authorizedConsent()
	consent.ValidityPeriod = time.Now().Add(-time.Hour).Unix()
	request := &models.ConsentValidateRequest{UserID: "user-1", Consent: consent}

	result := v.Validate(context.Background(), request)

	assert.False(t, result.IsValid)
	assert.Equal(t, models.ErrCodeInvalidStatus, result.ErrorCode)
	assert.Equal(t, "consent has expired", result.ErrorMessage)
}

func TestValidate_ValidWithoutExtension(t *testing.T) {
	v := newValidator(nil)

	request := &models.ConsentValidateRequest{UserID: "user-1", Consent: authorizedConsent()}

	result := v.Validate(context.Background(), request)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.ErrorCode)
}

func TestValidate_ExternalServiceSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/consent-validation", r.URL.Path)

		var envelope models.ExternalServiceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))
		assert.NotEmpty(t, envelope.RequestID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.ExternalServiceResponse{
			Status: models.ExternalStatusSuccess,
			Data:   models.JSON(`{"consentInformation":{"tier":"gold"}}`),
		})
	}))
	defer server.Close()

	v := newValidator(&config.ServiceExtensionConfig{
		Enabled: true,
		BaseURL: server.URL,
		Endpoints: config.ExtensionEndpoints{
			ConsentValidation: "/consent-validation",
		},
	})

	request := &models.ConsentValidateRequest{UserID: "user-1", Consent: authorizedConsent()}

	result := v.Validate(context.Background(), request)

	assert.True(t, result.IsValid)
	assert.Equal(t, map[string]interface{}{"tier": "gold"}, result.ConsentInformation)
}

func TestValidate_ExternalServiceRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.ExternalServiceResponse{
			Status:       models.ExternalStatusError,
			ErrorCode:    "SCOPE_EXCEEDED",
			ErrorMessage: "requested resource is outside the consented scope",
		})
	}))
	defer server.Close()

	v := newValidator(&config.ServiceExtensionConfig{
		Enabled: true,
		BaseURL: server.URL,
		Endpoints: config.ExtensionEndpoints{
			ConsentValidation: "/consent-validation",
		},
	})

	request := &models.ConsentValidateRequest{UserID: "user-1", Consent: authorizedConsent()}

	result := v.Validate(context.Background(), request)

	assert.False(t, result.IsValid)
	assert.Equal(t, "SCOPE_EXCEEDED", result.ErrorCode)
	assert.Equal(t, http.StatusBadRequest, result.HTTPCode)
}

func TestValidate_ExternalServiceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	v := newValidator(&config.ServiceExtensionConfig{
		Enabled: true,
		BaseURL: server.URL,
		Endpoints: config.ExtensionEndpoints{
			ConsentValidation: "/consent-validation",
		},
	})

	request := &models.ConsentValidateRequest{UserID: "user-1", Consent: authorizedConsent()}

	result := v.Validate(context.Background(), request)

	assert.False(t, result.IsValid)
	assert.Equal(t, models.ErrCodeExtensionError, result.ErrorCode)
	assert.Equal(t, http.StatusInternalServerError, result.HTTPCode)
}
