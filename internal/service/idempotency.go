package service

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/sirupsen/logrus"
	"github.com/wso2/consent-core-service/internal/config"
	"github.com/wso2/consent-core-service/internal/dao"
	"github.com/wso2/consent-core-service/internal/models"
	"github.com/wso2/consent-core-service/pkg/utils"
)

// detailedConsentLoader loads the detailed view of a consent. Satisfied by
// ConsentService.
type detailedConsentLoader interface {
	GetDetailedConsent(ctx context.Context, consentID, orgID string) (*models.DetailedConsentResource, error)
}

// IdempotencyValidator detects retried consent creation requests. The
// idempotency key of a created consent is stored as a consent attribute under
// the configured header name; retries are matched against it.
type IdempotencyValidator struct {
	cfg          *config.Config
	attributeDAO *dao.ConsentAttributeDAO
	loader       detailedConsentLoader
	logger       *logrus.Logger
}

// NewIdempotencyValidator creates a new IdempotencyValidator instance
func NewIdempotencyValidator(cfg *config.Config, attributeDAO *dao.ConsentAttributeDAO, loader detailedConsentLoader, logger *logrus.Logger) *IdempotencyValidator {
	return &IdempotencyValidator{
		cfg:          cfg,
		attributeDAO: attributeDAO,
		loader:       loader,
		logger:       logger,
	}
}

// AttributeName returns the attribute key under which idempotency key values
// are stored
func (v *IdempotencyValidator) AttributeName() string {
	return v.cfg.Idempotency.KeyHeaderName
}

// Validate classifies a consent creation request as fresh, a valid retry or a
// conflicting retry. A valid retry must come from the same client within the
// allowed time window and carry a semantically identical payload.
func (v *IdempotencyValidator) Validate(ctx context.Context, orgID, keyValue, clientID string, payload []byte) (*models.IdempotencyValidationResult, error) {
	fresh := &models.IdempotencyValidationResult{IsIdempotent: false, IsValid: true}

	if !v.cfg.Idempotency.Enabled || keyValue == "" || len(payload) == 0 {
		return fresh, nil
	}

	consentIDs, err := v.attributeDAO.FindConsentIDsByAttribute(ctx, v.AttributeName(), keyValue, orgID)
	if err != nil {
		return nil, err
	}

	if len(consentIDs) == 0 {
		return fresh, nil
	}

	consentID := consentIDs[0]
	log := v.logger.WithFields(logrus.Fields{
		"consent_id": consentID,
		"client_id":  clientID,
	})

	consent, err := v.loader.GetDetailedConsent(ctx, consentID, orgID)
	if err != nil {
		// The key matched a prior submission that can no longer be loaded.
		// Treat the retry as conflicting rather than creating a duplicate.
		log.WithError(err).Warn("Failed to load consent for idempotency check")
		return &models.IdempotencyValidationResult{IsIdempotent: true, IsValid: false, ConsentID: consentID}, nil
	}

	result := &models.IdempotencyValidationResult{
		IsIdempotent: true,
		ConsentID:    consentID,
	}

	if consent.ClientID != clientID {
		log.Warn("Idempotency key reused by a different client")
		return result, nil
	}

	if !utils.IsWithinAllowedWindow(consent.CreatedTime, v.cfg.Idempotency.AllowedTimeDuration) {
		log.Warn("Idempotency key reused outside the allowed time window")
		return result, nil
	}

	if !payloadsEqual(payload, consent.Receipt) {
		log.Warn("Idempotency key reused with a different payload")
		return result, nil
	}

	result.IsValid = true
	result.Consent = consent
	return result, nil
}

// payloadsEqual compares two JSON payloads semantically, ignoring key order
// and whitespace
func payloadsEqual(a []byte, b models.JSON) bool {
	var av, bv interface{}
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}
