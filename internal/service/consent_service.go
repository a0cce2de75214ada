package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wso2/consent-core-service/internal/config"
	"github.com/wso2/consent-core-service/internal/dao"
	"github.com/wso2/consent-core-service/internal/database"
	client "github.com/wso2/consent-core-service/internal/extension-client"
	"github.com/wso2/consent-core-service/internal/models"
	"github.com/wso2/consent-core-service/pkg/utils"
)

// ConsentService handles business logic for the consent lifecycle. Every
// mutating operation runs in a single transaction covering the consent row,
// its child rows, the status audit record and the history entry.
type ConsentService struct {
	consentDAO      *dao.ConsentDAO
	authResourceDAO *dao.AuthResourceDAO
	mappingDAO      *dao.MappingDAO
	attributeDAO    *dao.ConsentAttributeDAO
	statusAuditDAO  *dao.StatusAuditDAO
	fileDAO         *dao.ConsentFileDAO
	history         *HistoryRecorder
	extension       *client.ExtensionClient
	db              *database.DB
	cfg             *config.Config
	logger          *logrus.Logger
}

// NewConsentService creates a new consent service instance
func NewConsentService(
	consentDAO *dao.ConsentDAO,
	authResourceDAO *dao.AuthResourceDAO,
	mappingDAO *dao.MappingDAO,
	attributeDAO *dao.ConsentAttributeDAO,
	statusAuditDAO *dao.StatusAuditDAO,
	fileDAO *dao.ConsentFileDAO,
	history *HistoryRecorder,
	extension *client.ExtensionClient,
	db *database.DB,
	cfg *config.Config,
	logger *logrus.Logger,
) *ConsentService {
	return &ConsentService{
		consentDAO:      consentDAO,
		authResourceDAO: authResourceDAO,
		mappingDAO:      mappingDAO,
		attributeDAO:    attributeDAO,
		statusAuditDAO:  statusAuditDAO,
		fileDAO:         fileDAO,
		history:         history,
		extension:       extension,
		db:              db,
		cfg:             cfg,
		logger:          logger,
	}
}

// invokeExtension forwards a lifecycle event to the external validation
// service. A transport failure or an ERROR envelope aborts the surrounding
// transaction.
func (s *ConsentService) invokeExtension(ctx context.Context, extensionPoint string, payload *models.ExtensionEventPayload) error {
	if !s.extension.Enabled() {
		return nil
	}

	response, err := s.extension.Invoke(ctx, extensionPoint, payload)
	if err != nil {
		return models.NewServiceError(models.ErrCodeExtensionError, err.Error())
	}
	if !response.IsSuccess() {
		message := response.ErrorMessage
		if message == "" {
			message = fmt.Sprintf("extension point %s rejected the operation", extensionPoint)
		}
		return models.NewServiceError(models.ErrCodeExtensionError, message)
	}

	return nil
}

// validateConsentCreateRequest validates a consent creation request
func (s *ConsentService) validateConsentCreateRequest(request *models.ConsentCreateRequest, clientID, orgID string) error {
	if err := utils.ValidateClientID(clientID); err != nil {
		return models.NewValidationError(err.Error())
	}

	if err := utils.ValidateOrgID(orgID); err != nil {
		return models.NewValidationError(err.Error())
	}

	if len(request.Receipt) == 0 {
		return models.NewValidationError("receipt is required")
	}

	if err := utils.ValidateConsentType(request.ConsentType); err != nil {
		return models.NewValidationError(err.Error())
	}

	if err := utils.ValidateRequired("currentStatus", request.CurrentStatus); err != nil {
		return models.NewValidationError(err.Error())
	}

	if request.ValidityPeriod > 0 && !utils.IsFutureTime(request.ValidityPeriod) {
		return models.NewValidationError("validityPeriod must be in the future")
	}

	if request.ImplicitAuth {
		if err := utils.ValidateRequired("authStatus", request.AuthStatus); err != nil {
			return models.NewValidationError(err.Error())
		}
		if err := utils.ValidateRequired("authType", request.AuthType); err != nil {
			return models.NewValidationError(err.Error())
		}
	}

	return nil
}

// CreateConsent creates a new consent with its attributes and optional
// implicit authorization resource
func (s *ConsentService) CreateConsent(ctx context.Context, request *models.ConsentCreateRequest, clientID, orgID string) (*models.DetailedConsentResource, error) {
	if err := s.validateConsentCreateRequest(request, clientID, orgID); err != nil {
		return nil, err
	}

	var detailed *models.DetailedConsentResource
	err := s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		var txErr error
		detailed, txErr = s.createConsentInTx(ctx, tx, request, clientID, orgID)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"consent_id":   detailed.ConsentID,
		"client_id":    clientID,
		"consent_type": detailed.ConsentType,
	}).Info("Consent created")

	return detailed, nil
}

// CreateExclusiveConsent creates a new consent after retiring every existing
// consent of the same client, type and user that sits in the applicable
// status. Retirement and creation commit atomically.
func (s *ConsentService) CreateExclusiveConsent(ctx context.Context, request *models.ExclusiveConsentCreateRequest, clientID, orgID string) (*models.DetailedConsentResource, error) {
	if err := s.validateConsentCreateRequest(&request.ConsentCreateRequest, clientID, orgID); err != nil {
		return nil, err
	}

	if err := utils.ValidateRequired("userId", request.UserID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := utils.ValidateRequired("applicableExistingStatus", request.ApplicableExistingStatus); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := utils.ValidateRequired("newExistingStatus", request.NewExistingStatus); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	var detailed *models.DetailedConsentResource
	err := s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		priors, err := s.consentDAO.GetApplicableConsentsWithTx(ctx, tx, clientID, request.ConsentType, request.UserID, request.ApplicableExistingStatus, orgID)
		if err != nil {
			return err
		}

		now := utils.GetCurrentTimestamp()
		for _, prior := range priors {
			if err := s.consentDAO.UpdateStatusWithTx(ctx, tx, prior.ConsentID, orgID, request.NewExistingStatus, now); err != nil {
				return err
			}

			if err := s.deactivateConsentMappings(ctx, tx, prior.ConsentID, orgID); err != nil {
				return err
			}

			audit := &models.ConsentStatusAudit{
				StatusAuditID:  utils.GenerateAuditID(),
				ConsentID:      prior.ConsentID,
				CurrentStatus:  request.NewExistingStatus,
				ActionTime:     now,
				Reason:         models.ReasonExclusiveRevoke,
				ActionBy:       request.UserID,
				PreviousStatus: prior.CurrentStatus,
				OrgID:          orgID,
			}
			if err := s.statusAuditDAO.CreateWithTx(ctx, tx, audit); err != nil {
				return err
			}
		}

		var txErr error
		detailed, txErr = s.createConsentInTx(ctx, tx, &request.ConsentCreateRequest, clientID, orgID)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"consent_id": detailed.ConsentID,
		"client_id":  clientID,
		"user_id":    request.UserID,
	}).Info("Exclusive consent created")

	return detailed, nil
}

// createConsentInTx performs the shared insertion steps of consent creation
func (s *ConsentService) createConsentInTx(ctx context.Context, tx *database.Transaction, request *models.ConsentCreateRequest, clientID, orgID string) (*models.DetailedConsentResource, error) {
	now := utils.GetCurrentTimestamp()

	consent := &models.Consent{
		ConsentID:          utils.GenerateConsentID(),
		Receipt:            request.Receipt,
		CreatedTime:        now,
		UpdatedTime:        now,
		ClientID:           clientID,
		ConsentType:        request.ConsentType,
		CurrentStatus:      request.CurrentStatus,
		ConsentFrequency:   request.ConsentFrequency,
		ValidityPeriod:     request.ValidityPeriod,
		RecurringIndicator: request.RecurringIndicator,
		OrgID:              orgID,
	}

	if err := s.consentDAO.CreateWithTx(ctx, tx, consent); err != nil {
		return nil, err
	}

	if len(request.Attributes) > 0 {
		if err := s.attributeDAO.CreateWithTx(ctx, tx, consent.ConsentID, orgID, request.Attributes); err != nil {
			return nil, err
		}
	}

	var auths []models.AuthResource
	if request.ImplicitAuth {
		auth := &models.AuthResource{
			AuthID:      utils.GenerateAuthID(),
			ConsentID:   consent.ConsentID,
			AuthType:    request.AuthType,
			UserID:      request.UserID,
			AuthStatus:  request.AuthStatus,
			UpdatedTime: now,
			OrgID:       orgID,
		}
		if err := s.authResourceDAO.CreateWithTx(ctx, tx, auth); err != nil {
			return nil, err
		}
		auths = append(auths, *auth)
	}

	audit := &models.ConsentStatusAudit{
		StatusAuditID:  utils.GenerateAuditID(),
		ConsentID:      consent.ConsentID,
		CurrentStatus:  consent.CurrentStatus,
		ActionTime:     now,
		Reason:         models.ReasonCreateConsent,
		ActionBy:       clientID,
		PreviousStatus: "",
		OrgID:          orgID,
	}
	if err := s.statusAuditDAO.CreateWithTx(ctx, tx, audit); err != nil {
		return nil, err
	}

	detailed := &models.DetailedConsentResource{
		ConsentID:               consent.ConsentID,
		ClientID:                consent.ClientID,
		Receipt:                 consent.Receipt,
		ConsentType:             consent.ConsentType,
		CurrentStatus:           consent.CurrentStatus,
		ConsentFrequency:        consent.ConsentFrequency,
		ValidityPeriod:          consent.ValidityPeriod,
		CreatedTime:             consent.CreatedTime,
		UpdatedTime:             consent.UpdatedTime,
		RecurringIndicator:      consent.RecurringIndicator,
		OrgID:                   consent.OrgID,
		ConsentAttributes:       request.Attributes,
		AuthorizationResources:  auths,
		ConsentMappingResources: nil,
	}

	if err := s.history.Record(ctx, tx, detailed, models.ReasonCreateConsent, nil, now); err != nil {
		return nil, err
	}

	payload := &models.ExtensionEventPayload{
		ConsentID: consent.ConsentID,
		OrgID:     orgID,
		Consent:   detailed,
	}
	if err := s.invokeExtension(ctx, models.ExtensionPointConsentPersistence, payload); err != nil {
		return nil, err
	}

	return detailed, nil
}

// GetDetailedConsent retrieves a consent with its attributes, authorization
// resources and account mappings
func (s *ConsentService) GetDetailedConsent(ctx context.Context, consentID, orgID string) (*models.DetailedConsentResource, error) {
	if err := utils.ValidateConsentID(consentID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := utils.ValidateOrgID(orgID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	consent, err := s.consentDAO.GetByID(ctx, consentID, orgID)
	if err != nil {
		return nil, err
	}

	attributes, err := s.attributeDAO.GetByConsentID(ctx, consentID, orgID)
	if err != nil {
		return nil, err
	}

	auths, err := s.authResourceDAO.GetByConsentID(ctx, consentID, orgID)
	if err != nil {
		return nil, err
	}

	mappings, err := s.mappingDAO.GetByConsentID(ctx, consentID, orgID)
	if err != nil {
		return nil, err
	}

	return composeDetailed(consent, attributes, auths, mappings), nil
}

// SearchDetailedConsents searches consents and composes the detailed view for
// each match
func (s *ConsentService) SearchDetailedConsents(ctx context.Context, params *models.ConsentSearchParams) (*models.ConsentSearchResponse, error) {
	if err := utils.ValidateOrgID(params.OrgID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	params.Limit = utils.ValidateLimit(params.Limit)
	params.Offset = utils.ValidateOffset(params.Offset)

	consents, total, err := s.consentDAO.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	results := make([]models.DetailedConsentResource, 0, len(consents))
	for i := range consents {
		consent := &consents[i]

		attributes, err := s.attributeDAO.GetByConsentID(ctx, consent.ConsentID, params.OrgID)
		if err != nil {
			return nil, err
		}

		auths, err := s.authResourceDAO.GetByConsentID(ctx, consent.ConsentID, params.OrgID)
		if err != nil {
			return nil, err
		}

		mappings, err := s.mappingDAO.GetByConsentID(ctx, consent.ConsentID, params.OrgID)
		if err != nil {
			return nil, err
		}

		results = append(results, *composeDetailed(consent, attributes, auths, mappings))
	}

	return &models.ConsentSearchResponse{
		Data: results,
		Metadata: models.ConsentSearchMetadata{
			Total:  total,
			Limit:  params.Limit,
			Offset: params.Offset,
		},
	}, nil
}

// SearchAuditRecords searches consent status audit records
func (s *ConsentService) SearchAuditRecords(ctx context.Context, params *models.AuditSearchParams) ([]models.ConsentStatusAudit, int, error) {
	if err := utils.ValidateOrgID(params.OrgID); err != nil {
		return nil, 0, models.NewValidationError(err.Error())
	}

	params.Limit = utils.ValidateLimit(params.Limit)
	params.Offset = utils.ValidateOffset(params.Offset)

	return s.statusAuditDAO.Search(ctx, params)
}

// GetConsentAmendmentHistory retrieves the amendment history of a consent
func (s *ConsentService) GetConsentAmendmentHistory(ctx context.Context, consentID, orgID string) ([]models.ConsentHistoryResource, error) {
	if err := utils.ValidateConsentID(consentID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	// Ensure the consent exists before reading history
	if _, err := s.consentDAO.GetByID(ctx, consentID, orgID); err != nil {
		return nil, err
	}

	return s.history.GetHistory(ctx, consentID, orgID)
}

// buildDetailedWithTx composes the detailed view of a consent inside a
// transaction
func (s *ConsentService) buildDetailedWithTx(ctx context.Context, tx *database.Transaction, consent *models.Consent) (*models.DetailedConsentResource, error) {
	attributes, err := s.attributeDAO.GetByConsentIDWithTx(ctx, tx, consent.ConsentID, consent.OrgID)
	if err != nil {
		return nil, err
	}

	auths, err := s.authResourceDAO.GetByConsentIDWithTx(ctx, tx, consent.ConsentID, consent.OrgID)
	if err != nil {
		return nil, err
	}

	mappings, err := s.mappingDAO.GetByConsentIDWithTx(ctx, tx, consent.ConsentID, consent.OrgID)
	if err != nil {
		return nil, err
	}

	return composeDetailed(consent, attributes, auths, mappings), nil
}

// deactivateConsentMappings flips every active mapping of a consent to
// inactive inside a transaction
func (s *ConsentService) deactivateConsentMappings(ctx context.Context, tx *database.Transaction, consentID, orgID string) error {
	mappings, err := s.mappingDAO.GetByConsentIDWithTx(ctx, tx, consentID, orgID)
	if err != nil {
		return err
	}

	var activeIDs []string
	for _, m := range mappings {
		if m.MappingStatus == models.MappingStatusActive {
			activeIDs = append(activeIDs, m.MappingID)
		}
	}

	return s.mappingDAO.UpdateStatusForIDsWithTx(ctx, tx, activeIDs, orgID, models.MappingStatusInactive)
}

// composeDetailed assembles the detailed consent view from its row sets
func composeDetailed(consent *models.Consent, attributes map[string]string, auths []models.AuthResource, mappings []models.ConsentMapping) *models.DetailedConsentResource {
	return &models.DetailedConsentResource{
		ConsentID:               consent.ConsentID,
		ClientID:                consent.ClientID,
		Receipt:                 consent.Receipt,
		ConsentType:             consent.ConsentType,
		CurrentStatus:           consent.CurrentStatus,
		ConsentFrequency:        consent.ConsentFrequency,
		ValidityPeriod:          consent.ValidityPeriod,
		CreatedTime:             consent.CreatedTime,
		UpdatedTime:             consent.UpdatedTime,
		RecurringIndicator:      consent.RecurringIndicator,
		OrgID:                   consent.OrgID,
		ConsentAttributes:       attributes,
		AuthorizationResources:  auths,
		ConsentMappingResources: mappings,
	}
}

// findAuthResource locates an authorization resource of a consent by ID
func findAuthResource(auths []models.AuthResource, authID string) (*models.AuthResource, error) {
	for i := range auths {
		if auths[i].AuthID == authID {
			return &auths[i], nil
		}
	}
	return nil, models.NewServiceError(models.ErrCodeAuthResourceNotFound,
		fmt.Sprintf("auth resource %s does not belong to the consent", authID))
}
