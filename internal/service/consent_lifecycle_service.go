package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wso2/consent-core-service/internal/database"
	"github.com/wso2/consent-core-service/internal/models"
	"github.com/wso2/consent-core-service/pkg/utils"
)

// BindUserAccounts binds a user and their account permissions to an
// authorization resource and moves the consent to its post-authorization
// status
func (s *ConsentService) BindUserAccounts(ctx context.Context, request *models.BindUserAccountsRequest, consentID, orgID string) (*models.DetailedConsentResource, error) {
	if err := utils.ValidateConsentID(consentID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := utils.ValidateRequired("authId", request.AuthID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := utils.ValidateRequired("userId", request.UserID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if len(request.AccountPermissionMap) == 0 {
		return nil, models.NewValidationError("accountPermissions is required")
	}
	if err := utils.ValidateRequired("newAuthStatus", request.NewAuthStatus); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := utils.ValidateRequired("newConsentStatus", request.NewConsentStatus); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	var detailed *models.DetailedConsentResource
	err := s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		consent, err := s.consentDAO.GetByIDForUpdate(ctx, tx, consentID, orgID)
		if err != nil {
			return err
		}

		if s.cfg.Consent.IsTerminalStatus(consent.CurrentStatus) {
			return models.NewServiceError(models.ErrCodeInvalidStatus,
				fmt.Sprintf("consent in status %s cannot be authorized", consent.CurrentStatus))
		}

		auths, err := s.authResourceDAO.GetByConsentIDWithTx(ctx, tx, consentID, orgID)
		if err != nil {
			return err
		}

		auth, err := findAuthResource(auths, request.AuthID)
		if err != nil {
			return err
		}

		payload := &models.ExtensionEventPayload{
			ConsentID: consentID,
			OrgID:     orgID,
			Request:   request,
		}
		if err := s.invokeExtension(ctx, models.ExtensionPointPreConsentAuthorization, payload); err != nil {
			return err
		}

		now := utils.GetCurrentTimestamp()

		if auth.UserID != request.UserID {
			if err := s.authResourceDAO.UpdateUserWithTx(ctx, tx, auth.AuthID, orgID, request.UserID, now); err != nil {
				return err
			}
		}
		if err := s.authResourceDAO.UpdateStatusWithTx(ctx, tx, auth.AuthID, orgID, request.NewAuthStatus, now); err != nil {
			return err
		}

		for accountID, permission := range request.AccountPermissionMap {
			mapping := &models.ConsentMapping{
				MappingID:     utils.GenerateMappingID(),
				AuthID:        auth.AuthID,
				AccountID:     accountID,
				Permission:    permission,
				MappingStatus: models.MappingStatusActive,
				OrgID:         orgID,
			}
			if err := s.mappingDAO.CreateWithTx(ctx, tx, mapping); err != nil {
				return err
			}
		}

		if err := s.consentDAO.UpdateStatusWithTx(ctx, tx, consentID, orgID, request.NewConsentStatus, now); err != nil {
			return err
		}

		audit := &models.ConsentStatusAudit{
			StatusAuditID:  utils.GenerateAuditID(),
			ConsentID:      consentID,
			CurrentStatus:  request.NewConsentStatus,
			ActionTime:     now,
			Reason:         models.ReasonBindAccounts,
			ActionBy:       request.UserID,
			PreviousStatus: consent.CurrentStatus,
			OrgID:          orgID,
		}
		if err := s.statusAuditDAO.CreateWithTx(ctx, tx, audit); err != nil {
			return err
		}

		consent.CurrentStatus = request.NewConsentStatus
		consent.UpdatedTime = now
		detailed, err = s.buildDetailedWithTx(ctx, tx, consent)
		if err != nil {
			return err
		}

		deltas := map[string]interface{}{
			"currentStatus": request.NewConsentStatus,
			"userId":        request.UserID,
		}
		return s.history.Record(ctx, tx, detailed, models.ReasonBindAccounts, deltas, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"consent_id": consentID,
		"auth_id":    request.AuthID,
		"user_id":    request.UserID,
	}).Info("User accounts bound to consent")

	return detailed, nil
}

// ReauthorizeConsent updates the account mappings of an authorization resource
// to match the newly elected accounts and transitions the consent status.
// Accounts missing from the request are deactivated, new ones are created and
// previously deactivated ones are reactivated.
func (s *ConsentService) ReauthorizeConsent(ctx context.Context, request *models.ReauthorizeConsentRequest, consentID, orgID string) (*models.DetailedConsentResource, error) {
	if err := utils.ValidateConsentID(consentID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := utils.ValidateRequired("authId", request.AuthID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := utils.ValidateRequired("userId", request.UserID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if len(request.AccountPermissionMap) == 0 {
		return nil, models.NewValidationError("accountPermissions is required")
	}
	if err := utils.ValidateRequired("newConsentStatus", request.NewConsentStatus); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	var detailed *models.DetailedConsentResource
	err := s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		consent, err := s.consentDAO.GetByIDForUpdate(ctx, tx, consentID, orgID)
		if err != nil {
			return err
		}

		if request.CurrentConsentStatus != "" && consent.CurrentStatus != request.CurrentConsentStatus {
			return models.NewServiceError(models.ErrCodeInvalidStatus,
				fmt.Sprintf("consent is in status %s, expected %s", consent.CurrentStatus, request.CurrentConsentStatus))
		}

		auths, err := s.authResourceDAO.GetByConsentIDWithTx(ctx, tx, consentID, orgID)
		if err != nil {
			return err
		}

		auth, err := findAuthResource(auths, request.AuthID)
		if err != nil {
			return err
		}

		if auth.UserID != "" && auth.UserID != request.UserID {
			return models.NewServiceError(models.ErrCodeUserIDMismatch,
				"user does not match the authorization resource")
		}

		now := utils.GetCurrentTimestamp()

		if err := s.updateAccountMappings(ctx, tx, auth.AuthID, orgID, request.AccountPermissionMap); err != nil {
			return err
		}

		if err := s.consentDAO.UpdateStatusWithTx(ctx, tx, consentID, orgID, request.NewConsentStatus, now); err != nil {
			return err
		}

		audit := &models.ConsentStatusAudit{
			StatusAuditID:  utils.GenerateAuditID(),
			ConsentID:      consentID,
			CurrentStatus:  request.NewConsentStatus,
			ActionTime:     now,
			Reason:         models.ReasonReauthorize,
			ActionBy:       request.UserID,
			PreviousStatus: consent.CurrentStatus,
			OrgID:          orgID,
		}
		if err := s.statusAuditDAO.CreateWithTx(ctx, tx, audit); err != nil {
			return err
		}

		consent.CurrentStatus = request.NewConsentStatus
		consent.UpdatedTime = now
		detailed, err = s.buildDetailedWithTx(ctx, tx, consent)
		if err != nil {
			return err
		}

		deltas := map[string]interface{}{
			"currentStatus": request.NewConsentStatus,
		}
		return s.history.Record(ctx, tx, detailed, models.ReasonReauthorize, deltas, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"consent_id": consentID,
		"auth_id":    request.AuthID,
	}).Info("Consent reauthorized")

	return detailed, nil
}

// AmendConsent amends the receipt, validity period, status, account mappings
// and attributes of a consent in one atomic transition. The pre-amendment
// state is snapshotted to history.
func (s *ConsentService) AmendConsent(ctx context.Context, request *models.ConsentAmendRequest, consentID, orgID string) (*models.DetailedConsentResource, error) {
	if err := utils.ValidateConsentID(consentID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := utils.ValidateRequired("authId", request.AuthID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := utils.ValidateRequired("userId", request.UserID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := utils.ValidateRequired("amendmentReason", request.AmendmentReason); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if request.AmendedTimestamp <= 0 {
		return nil, models.NewValidationError("amendedTimestamp is required")
	}
	if request.ValidityPeriod > 0 && !utils.IsFutureTime(request.ValidityPeriod) {
		return nil, models.NewValidationError("validityPeriod must be in the future")
	}

	var detailed *models.DetailedConsentResource
	err := s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		consent, err := s.consentDAO.GetByIDForUpdate(ctx, tx, consentID, orgID)
		if err != nil {
			return err
		}

		if consent.CurrentStatus == s.cfg.Consent.Revoked() {
			return models.NewServiceError(models.ErrCodeConsentAlreadyRevoked,
				"revoked consents cannot be amended")
		}
		if s.cfg.Consent.IsTerminalStatus(consent.CurrentStatus) {
			return models.NewServiceError(models.ErrCodeInvalidStatus,
				fmt.Sprintf("consent in status %s cannot be amended", consent.CurrentStatus))
		}

		before, err := s.buildDetailedWithTx(ctx, tx, consent)
		if err != nil {
			return err
		}

		auth, err := findAuthResource(before.AuthorizationResources, request.AuthID)
		if err != nil {
			return err
		}
		if auth.UserID != "" && auth.UserID != request.UserID {
			return models.NewServiceError(models.ErrCodeUserIDMismatch,
				"user does not match the authorization resource")
		}

		payload := &models.ExtensionEventPayload{
			ConsentID: consentID,
			OrgID:     orgID,
			Request:   request,
			Consent:   before,
		}
		if err := s.invokeExtension(ctx, models.ExtensionPointConsentManage, payload); err != nil {
			return err
		}

		now := utils.GetCurrentTimestamp()
		deltas := map[string]interface{}{
			"amendmentReason": request.AmendmentReason,
		}

		if len(request.Receipt) > 0 {
			if err := s.consentDAO.UpdateReceiptWithTx(ctx, tx, consentID, orgID, request.Receipt, now); err != nil {
				return err
			}
			deltas["receipt"] = request.Receipt
		}

		if request.ValidityPeriod > 0 {
			if err := s.consentDAO.UpdateValidityPeriodWithTx(ctx, tx, consentID, orgID, request.ValidityPeriod, now); err != nil {
				return err
			}
			deltas["validityPeriod"] = request.ValidityPeriod
		}

		newStatus := request.NewConsentStatus
		if newStatus == "" {
			newStatus = s.cfg.Consent.Amended()
		}
		if err := s.consentDAO.UpdateStatusWithTx(ctx, tx, consentID, orgID, newStatus, now); err != nil {
			return err
		}
		deltas["currentStatus"] = newStatus

		if len(request.AccountPermissionMap) > 0 {
			if err := s.updateAccountMappings(ctx, tx, auth.AuthID, orgID, request.AccountPermissionMap); err != nil {
				return err
			}
		}

		if len(request.Attributes) > 0 {
			if err := s.attributeDAO.UpsertWithTx(ctx, tx, consentID, orgID, request.Attributes); err != nil {
				return err
			}
			deltas["consentAttributes"] = request.Attributes
		}

		audit := &models.ConsentStatusAudit{
			StatusAuditID:  utils.GenerateAuditID(),
			ConsentID:      consentID,
			CurrentStatus:  newStatus,
			ActionTime:     now,
			Reason:         models.ReasonAmendConsent,
			ActionBy:       request.UserID,
			PreviousStatus: consent.CurrentStatus,
			OrgID:          orgID,
		}
		if err := s.statusAuditDAO.CreateWithTx(ctx, tx, audit); err != nil {
			return err
		}

		if err := s.history.Record(ctx, tx, before, models.ReasonAmendConsent, deltas, request.AmendedTimestamp); err != nil {
			return err
		}

		consent.CurrentStatus = newStatus
		consent.UpdatedTime = now
		detailed, err = s.buildDetailedWithTx(ctx, tx, consent)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"consent_id": consentID,
		"user_id":    request.UserID,
	}).Info("Consent amended")

	return detailed, nil
}

// RevokeConsent revokes a consent, deactivating every active account mapping.
// Revoking an already revoked consent is rejected.
func (s *ConsentService) RevokeConsent(ctx context.Context, request *models.ConsentRevokeRequest, consentID, orgID string) (*models.DetailedConsentResource, error) {
	if err := utils.ValidateConsentID(consentID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := utils.ValidateRequired("userId", request.UserID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	newStatus := request.NewConsentStatus
	if newStatus == "" {
		newStatus = s.cfg.Consent.Revoked()
	}

	var detailed *models.DetailedConsentResource
	err := s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		consent, err := s.consentDAO.GetByIDForUpdate(ctx, tx, consentID, orgID)
		if err != nil {
			return err
		}

		if consent.CurrentStatus == s.cfg.Consent.Revoked() {
			return models.NewServiceError(models.ErrCodeConsentAlreadyRevoked,
				fmt.Sprintf("consent %s is already revoked", consentID))
		}

		if len(request.ApplicableStatuses) > 0 && !containsStatus(request.ApplicableStatuses, consent.CurrentStatus) {
			return models.NewServiceError(models.ErrCodeInvalidStatus,
				fmt.Sprintf("consent in status %s is not applicable for revocation", consent.CurrentStatus))
		}

		before, err := s.buildDetailedWithTx(ctx, tx, consent)
		if err != nil {
			return err
		}

		if !before.HasAuthorizedUser(request.UserID) {
			return models.NewServiceError(models.ErrCodeUserIDMismatch,
				"user is not authorized to revoke this consent")
		}

		payload := &models.ExtensionEventPayload{
			ConsentID: consentID,
			OrgID:     orgID,
			Request:   request,
			Consent:   before,
		}
		if err := s.invokeExtension(ctx, models.ExtensionPointConsentManageDelete, payload); err != nil {
			return err
		}

		now := utils.GetCurrentTimestamp()

		if err := s.deactivateConsentMappings(ctx, tx, consentID, orgID); err != nil {
			return err
		}

		if err := s.consentDAO.UpdateStatusWithTx(ctx, tx, consentID, orgID, newStatus, now); err != nil {
			return err
		}

		reason := request.Reason
		if reason == "" {
			reason = models.ReasonRevokeConsent
		}

		audit := &models.ConsentStatusAudit{
			StatusAuditID:  utils.GenerateAuditID(),
			ConsentID:      consentID,
			CurrentStatus:  newStatus,
			ActionTime:     now,
			Reason:         reason,
			ActionBy:       request.UserID,
			PreviousStatus: consent.CurrentStatus,
			OrgID:          orgID,
		}
		if err := s.statusAuditDAO.CreateWithTx(ctx, tx, audit); err != nil {
			return err
		}

		deltas := map[string]interface{}{
			"currentStatus": newStatus,
		}
		if err := s.history.Record(ctx, tx, before, models.ReasonRevokeConsent, deltas, now); err != nil {
			return err
		}

		consent.CurrentStatus = newStatus
		consent.UpdatedTime = now
		detailed, err = s.buildDetailedWithTx(ctx, tx, consent)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"consent_id": consentID,
		"user_id":    request.UserID,
		"new_status": newStatus,
	}).Info("Consent revoked")

	return detailed, nil
}

// UpdateConsentStatus transitions a consent to a new status with an audit trail
func (s *ConsentService) UpdateConsentStatus(ctx context.Context, consentID, orgID, newStatus, actionBy string) error {
	if err := utils.ValidateConsentID(consentID); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := utils.ValidateRequired("newStatus", newStatus); err != nil {
		return models.NewValidationError(err.Error())
	}

	return s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		consent, err := s.consentDAO.GetByIDForUpdate(ctx, tx, consentID, orgID)
		if err != nil {
			return err
		}

		before, err := s.buildDetailedWithTx(ctx, tx, consent)
		if err != nil {
			return err
		}

		now := utils.GetCurrentTimestamp()

		if err := s.consentDAO.UpdateStatusWithTx(ctx, tx, consentID, orgID, newStatus, now); err != nil {
			return err
		}

		audit := &models.ConsentStatusAudit{
			StatusAuditID:  utils.GenerateAuditID(),
			ConsentID:      consentID,
			CurrentStatus:  newStatus,
			ActionTime:     now,
			Reason:         models.ReasonStatusUpdate,
			ActionBy:       actionBy,
			PreviousStatus: consent.CurrentStatus,
			OrgID:          orgID,
		}
		if err := s.statusAuditDAO.CreateWithTx(ctx, tx, audit); err != nil {
			return err
		}

		deltas := map[string]interface{}{
			"currentStatus": newStatus,
		}
		return s.history.Record(ctx, tx, before, models.ReasonStatusUpdate, deltas, now)
	})
}

// UpdateConsentAttributes updates existing attribute keys and adds new ones.
// Keys absent from the input are left untouched.
func (s *ConsentService) UpdateConsentAttributes(ctx context.Context, consentID, orgID string, attributes map[string]string) (map[string]string, error) {
	if err := utils.ValidateConsentID(consentID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if len(attributes) == 0 {
		return nil, models.NewValidationError("attributes is required")
	}

	var updated map[string]string
	err := s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		consent, err := s.consentDAO.GetByIDForUpdate(ctx, tx, consentID, orgID)
		if err != nil {
			return err
		}

		before, err := s.buildDetailedWithTx(ctx, tx, consent)
		if err != nil {
			return err
		}

		if err := s.attributeDAO.UpsertWithTx(ctx, tx, consentID, orgID, attributes); err != nil {
			return err
		}

		deltas := map[string]interface{}{
			"consentAttributes": attributes,
		}
		if err := s.history.Record(ctx, tx, before, models.ReasonUpdateAttributes, deltas, 0); err != nil {
			return err
		}

		updated, err = s.attributeDAO.GetByConsentIDWithTx(ctx, tx, consentID, orgID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteConsentAttributes removes the given attribute keys from a consent
func (s *ConsentService) DeleteConsentAttributes(ctx context.Context, consentID, orgID string, keys []string) error {
	if err := utils.ValidateConsentID(consentID); err != nil {
		return models.NewValidationError(err.Error())
	}
	if len(keys) == 0 {
		return models.NewValidationError("attribute keys are required")
	}

	return s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		consent, err := s.consentDAO.GetByIDForUpdate(ctx, tx, consentID, orgID)
		if err != nil {
			return err
		}

		before, err := s.buildDetailedWithTx(ctx, tx, consent)
		if err != nil {
			return err
		}

		if err := s.attributeDAO.DeleteKeysWithTx(ctx, tx, consentID, orgID, keys); err != nil {
			return err
		}

		deltas := map[string]interface{}{
			"deletedAttributeKeys": keys,
		}
		return s.history.Record(ctx, tx, before, models.ReasonDeleteAttributes, deltas, 0)
	})
}

// StoreConsentFile stores the consent file and transitions the consent to the
// post-upload status. The consent must sit in the applicable status.
func (s *ConsentService) StoreConsentFile(ctx context.Context, request *models.ConsentFileUploadRequest, consentID, orgID string) error {
	if err := utils.ValidateConsentID(consentID); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := utils.ValidateRequired("fileContent", request.FileContent); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := utils.ValidateRequired("newConsentStatus", request.NewConsentStatus); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := utils.ValidateRequired("applicableStatus", request.ApplicableStatus); err != nil {
		return models.NewValidationError(err.Error())
	}

	return s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		consent, err := s.consentDAO.GetByIDForUpdate(ctx, tx, consentID, orgID)
		if err != nil {
			return err
		}

		if consent.CurrentStatus != request.ApplicableStatus {
			return models.NewServiceError(models.ErrCodeInvalidStatus,
				fmt.Sprintf("consent is in status %s, expected %s", consent.CurrentStatus, request.ApplicableStatus))
		}

		before, err := s.buildDetailedWithTx(ctx, tx, consent)
		if err != nil {
			return err
		}

		now := utils.GetCurrentTimestamp()

		file := &models.ConsentFile{
			ConsentID:   consentID,
			ConsentFile: request.FileContent,
			OrgID:       orgID,
		}
		if err := s.fileDAO.CreateWithTx(ctx, tx, file); err != nil {
			return err
		}

		if err := s.consentDAO.UpdateStatusWithTx(ctx, tx, consentID, orgID, request.NewConsentStatus, now); err != nil {
			return err
		}

		audit := &models.ConsentStatusAudit{
			StatusAuditID:  utils.GenerateAuditID(),
			ConsentID:      consentID,
			CurrentStatus:  request.NewConsentStatus,
			ActionTime:     now,
			Reason:         models.ReasonConsentFile,
			ActionBy:       request.UserID,
			PreviousStatus: consent.CurrentStatus,
			OrgID:          orgID,
		}
		if err := s.statusAuditDAO.CreateWithTx(ctx, tx, audit); err != nil {
			return err
		}

		deltas := map[string]interface{}{
			"currentStatus": request.NewConsentStatus,
		}
		return s.history.Record(ctx, tx, before, models.ReasonConsentFile, deltas, now)
	})
}

// GetConsentFile retrieves the stored consent file of a consent
func (s *ConsentService) GetConsentFile(ctx context.Context, consentID, orgID string) (*models.ConsentFile, error) {
	if err := utils.ValidateConsentID(consentID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	return s.fileDAO.GetByConsentID(ctx, consentID, orgID)
}

// containsStatus reports whether a status appears in the given list
func containsStatus(statuses []string, status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// updateAccountMappings reconciles the mappings of an authorization resource
// with the requested account permission set. Mappings are never deleted:
// accounts dropped from the set are deactivated, returning accounts are
// reactivated and new accounts get fresh active mappings.
func (s *ConsentService) updateAccountMappings(ctx context.Context, tx *database.Transaction, authID, orgID string, accountPermissions map[string]string) error {
	existing, err := s.mappingDAO.GetByAuthIDWithTx(ctx, tx, authID, orgID)
	if err != nil {
		return err
	}

	byAccount := make(map[string][]models.ConsentMapping, len(existing))
	for _, m := range existing {
		byAccount[m.AccountID] = append(byAccount[m.AccountID], m)
	}

	var toDeactivate, toReactivate []string

	for accountID, mappings := range byAccount {
		if _, wanted := accountPermissions[accountID]; wanted {
			continue
		}
		for _, m := range mappings {
			if m.MappingStatus == models.MappingStatusActive {
				toDeactivate = append(toDeactivate, m.MappingID)
			}
		}
	}

	for accountID, permission := range accountPermissions {
		mappings, exists := byAccount[accountID]
		if !exists {
			mapping := &models.ConsentMapping{
				MappingID:     utils.GenerateMappingID(),
				AuthID:        authID,
				AccountID:     accountID,
				Permission:    permission,
				MappingStatus: models.MappingStatusActive,
				OrgID:         orgID,
			}
			if err := s.mappingDAO.CreateWithTx(ctx, tx, mapping); err != nil {
				return err
			}
			continue
		}

		for _, m := range mappings {
			if m.MappingStatus == models.MappingStatusInactive {
				toReactivate = append(toReactivate, m.MappingID)
			}
		}
	}

	if err := s.mappingDAO.UpdateStatusForIDsWithTx(ctx, tx, toDeactivate, orgID, models.MappingStatusInactive); err != nil {
		return err
	}

	return s.mappingDAO.UpdateStatusForIDsWithTx(ctx, tx, toReactivate, orgID, models.MappingStatusActive)
}
