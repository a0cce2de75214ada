package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/consent-core-service/internal/config"
	"github.com/wso2/consent-core-service/internal/models"
)

func TestCreateConsent_ValidatesEmptyClientID(t *testing.T) {
	svc := &ConsentService{cfg: testConfig(), logger: testLogger()}

	request := &models.ConsentCreateRequest{
		Receipt:       models.JSON(`{}`),
		ConsentType:   "accounts",
		CurrentStatus: "AwaitingAuthorisation",
	}

	detailed, err := svc.CreateConsent(context.Background(), request, "", "org-1")

	require.Error(t, err)
	assert.Nil(t, detailed)
	assert.Equal(t, models.ErrCodeValidationError, models.AsServiceError(err).Code)
}

func TestCreateConsent_ValidatesMissingReceipt(t *testing.T) {
	svc := &ConsentService{cfg: testConfig(), logger: testLogger()}

	request := &models.ConsentCreateRequest{
		ConsentType:   "accounts",
		CurrentStatus: "AwaitingAuthorisation",
	}

	_, err := svc.CreateConsent(context.Background(), request, "client-1", "org-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "receipt is required")
}

func TestCreateConsent_ValidatesImplicitAuthFields(t *testing.T) {
	svc := &ConsentService{cfg: testConfig(), logger: testLogger()}

	request := &models.ConsentCreateRequest{
		Receipt:       models.JSON(`{}`),
		ConsentType:   "accounts",
		CurrentStatus: "AwaitingAuthorisation",
		ImplicitAuth:  true,
	}

	_, err := svc.CreateConsent(context.Background(), request, "client-1", "org-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "authStatus is required")
}

func TestCreateConsent_ValidatesPastValidityPeriod(t *testing.T) {
	svc := &ConsentService{cfg: testConfig(), logger: testLogger()}

	request := &models.ConsentCreateRequest{
		Receipt:        models.JSON(`{}`),
		ConsentType:    "accounts",
		CurrentStatus:  "AwaitingAuthorisation",
		ValidityPeriod: 1000,
	}

	_, err := svc.CreateConsent(context.Background(), request, "client-1", "org-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validityPeriod must be in the future")
}

func TestCreateConsent_PersistsConsentAuditAndHistory(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)INSERT INTO FS_CONSENT \(`).
		WithArgs(sqlmock.AnyArg(), []byte(`{"scope":"accounts"}`), sqlmock.AnyArg(), sqlmock.AnyArg(),
			"client-1", "accounts", "AwaitingAuthorisation", 0, int64(0), false, "org-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`(?s)INSERT INTO FS_CONSENT_AUTH_RESOURCE`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), models.AuthTypePrimary, "user-1",
			models.AuthStatusCreated, sqlmock.AnyArg(), "org-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`(?s)INSERT INTO FS_CONSENT_STATUS_AUDIT`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "AwaitingAuthorisation", sqlmock.AnyArg(),
			models.ReasonCreateConsent, "client-1", "", "org-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`(?s)INSERT INTO FS_CONSENT_HISTORY`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), models.ReasonCreateConsent,
			sqlmock.AnyArg(), sqlmock.AnyArg(), "org-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	request := &models.ConsentCreateRequest{
		Receipt:       models.JSON(`{"scope":"accounts"}`),
		ConsentType:   "accounts",
		CurrentStatus: "AwaitingAuthorisation",
		ImplicitAuth:  true,
		AuthStatus:    models.AuthStatusCreated,
		AuthType:      models.AuthTypePrimary,
		UserID:        "user-1",
	}

	detailed, err := svc.CreateConsent(context.Background(), request, "client-1", "org-1")

	require.NoError(t, err)
	assert.NotEmpty(t, detailed.ConsentID)
	assert.Equal(t, "AwaitingAuthorisation", detailed.CurrentStatus)
	require.Len(t, detailed.AuthorizationResources, 1)
	assert.Equal(t, "user-1", detailed.AuthorizationResources[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeConsent_DeactivatesMappingsAndRecordsAudit(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM FS_CONSENT WHERE .+ FOR UPDATE`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(consentRow("CONSENT-1", "Authorised"))
	expectDetailQueries(mock, "CONSENT-1",
		authRows(authRow("AUTH-1", "CONSENT-1", "user-1", models.AuthStatusApproved)),
		sqlmock.NewRows(mappingColumnNames).
			AddRow("MAPPING-1", "AUTH-1", "acc-1", "read", models.MappingStatusActive, "org-1"))
	mock.ExpectQuery(`(?s)FROM FS_CONSENT_MAPPING m\s+INNER JOIN FS_CONSENT_AUTH_RESOURCE ar`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(sqlmock.NewRows(mappingColumnNames).
			AddRow("MAPPING-1", "AUTH-1", "acc-1", "read", models.MappingStatusActive, "org-1"))
	mock.ExpectExec(`(?s)UPDATE FS_CONSENT_MAPPING\s+SET MAPPING_STATUS`).
		WithArgs(models.MappingStatusInactive, "MAPPING-1", "org-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)UPDATE FS_CONSENT\s+SET CURRENT_STATUS`).
		WithArgs("Revoked", sqlmock.AnyArg(), "CONSENT-1", "org-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)INSERT INTO FS_CONSENT_STATUS_AUDIT`).
		WithArgs(sqlmock.AnyArg(), "CONSENT-1", "Revoked", sqlmock.AnyArg(),
			models.ReasonRevokeConsent, "user-1", "Authorised", "org-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`(?s)INSERT INTO FS_CONSENT_HISTORY`).
		WithArgs(sqlmock.AnyArg(), "CONSENT-1", sqlmock.AnyArg(), models.ReasonRevokeConsent,
			sqlmock.AnyArg(), sqlmock.AnyArg(), "org-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	expectDetailQueries(mock, "CONSENT-1",
		authRows(authRow("AUTH-1", "CONSENT-1", "user-1", models.AuthStatusApproved)),
		sqlmock.NewRows(mappingColumnNames).
			AddRow("MAPPING-1", "AUTH-1", "acc-1", "read", models.MappingStatusInactive, "org-1"))
	mock.ExpectCommit()

	request := &models.ConsentRevokeRequest{UserID: "user-1"}

	detailed, err := svc.RevokeConsent(context.Background(), request, "CONSENT-1", "org-1")

	require.NoError(t, err)
	assert.Equal(t, "Revoked", detailed.CurrentStatus)
	assert.Empty(t, detailed.ActiveMappings())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeConsent_AlreadyRevoked(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM FS_CONSENT WHERE .+ FOR UPDATE`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(consentRow("CONSENT-1", "Revoked"))
	mock.ExpectRollback()

	request := &models.ConsentRevokeRequest{UserID: "user-1"}

	detailed, err := svc.RevokeConsent(context.Background(), request, "CONSENT-1", "org-1")

	require.Error(t, err)
	assert.Nil(t, detailed)
	assert.Equal(t, models.ErrCodeConsentAlreadyRevoked, models.AsServiceError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeConsent_UserMismatch(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM FS_CONSENT WHERE .+ FOR UPDATE`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(consentRow("CONSENT-1", "Authorised"))
	expectDetailQueries(mock, "CONSENT-1",
		authRows(authRow("AUTH-1", "CONSENT-1", "user-1", models.AuthStatusApproved)),
		sqlmock.NewRows(mappingColumnNames))
	mock.ExpectRollback()

	request := &models.ConsentRevokeRequest{UserID: "intruder"}

	_, err := svc.RevokeConsent(context.Background(), request, "CONSENT-1", "org-1")

	require.Error(t, err)
	assert.Equal(t, models.ErrCodeUserIDMismatch, models.AsServiceError(err).Code)
}

func TestBindUserAccounts_CreatesMappingAndTransitionsStatus(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM FS_CONSENT WHERE .+ FOR UPDATE`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(consentRow("CONSENT-1", "AwaitingAuthorisation"))
	mock.ExpectQuery(`(?s)FROM FS_CONSENT_AUTH_RESOURCE\s+WHERE CONSENT_ID = \?`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(authRows(authRow("AUTH-1", "CONSENT-1", "", models.AuthStatusCreated)))
	mock.ExpectExec(`(?s)UPDATE FS_CONSENT_AUTH_RESOURCE\s+SET USER_ID`).
		WithArgs("user-1", sqlmock.AnyArg(), "AUTH-1", "org-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)UPDATE FS_CONSENT_AUTH_RESOURCE\s+SET AUTH_STATUS`).
		WithArgs(models.AuthStatusApproved, sqlmock.AnyArg(), "AUTH-1", "org-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)INSERT INTO FS_CONSENT_MAPPING`).
		WithArgs(sqlmock.AnyArg(), "AUTH-1", "acc-1", "read", models.MappingStatusActive, "org-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`(?s)UPDATE FS_CONSENT\s+SET CURRENT_STATUS`).
		WithArgs("Authorised", sqlmock.AnyArg(), "CONSENT-1", "org-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)INSERT INTO FS_CONSENT_STATUS_AUDIT`).
		WithArgs(sqlmock.AnyArg(), "CONSENT-1", "Authorised", sqlmock.AnyArg(),
			models.ReasonBindAccounts, "user-1", "AwaitingAuthorisation", "org-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	expectDetailQueries(mock, "CONSENT-1",
		authRows(authRow("AUTH-1", "CONSENT-1", "user-1", models.AuthStatusApproved)),
		sqlmock.NewRows(mappingColumnNames).
			AddRow("MAPPING-1", "AUTH-1", "acc-1", "read", models.MappingStatusActive, "org-1"))
	mock.ExpectExec(`(?s)INSERT INTO FS_CONSENT_HISTORY`).
		WithArgs(sqlmock.AnyArg(), "CONSENT-1", sqlmock.AnyArg(), models.ReasonBindAccounts,
			sqlmock.AnyArg(), sqlmock.AnyArg(), "org-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	request := &models.BindUserAccountsRequest{
		AuthID:               "AUTH-1",
		UserID:               "user-1",
		AccountPermissionMap: map[string]string{"acc-1": "read"},
		NewAuthStatus:        models.AuthStatusApproved,
		NewConsentStatus:     "Authorised",
	}

	detailed, err := svc.BindUserAccounts(context.Background(), request, "CONSENT-1", "org-1")

	require.NoError(t, err)
	assert.Equal(t, "Authorised", detailed.CurrentStatus)
	require.Len(t, detailed.ConsentMappingResources, 1)
	assert.Equal(t, "acc-1", detailed.ConsentMappingResources[0].AccountID)
	assert.Equal(t, models.MappingStatusActive, detailed.ConsentMappingResources[0].MappingStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBindUserAccounts_UnknownAuthResource(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM FS_CONSENT WHERE .+ FOR UPDATE`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(consentRow("CONSENT-1", "AwaitingAuthorisation"))
	mock.ExpectQuery(`(?s)FROM FS_CONSENT_AUTH_RESOURCE\s+WHERE CONSENT_ID = \?`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(authRows(authRow("AUTH-other", "CONSENT-1", "", models.AuthStatusCreated)))
	mock.ExpectRollback()

	request := &models.BindUserAccountsRequest{
		AuthID:               "AUTH-1",
		UserID:               "user-1",
		AccountPermissionMap: map[string]string{"acc-1": "read"},
		NewAuthStatus:        models.AuthStatusApproved,
		NewConsentStatus:     "Authorised",
	}

	_, err := svc.BindUserAccounts(context.Background(), request, "CONSENT-1", "org-1")

	require.Error(t, err)
	assert.Equal(t, models.ErrCodeAuthResourceNotFound, models.AsServiceError(err).Code)
}

func TestReauthorizeConsent_ReconcilesAccountMappings(t *testing.T) {
	svc, mock := newTestService(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM FS_CONSENT WHERE .+ FOR UPDATE`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(consentRow("CONSENT-1", "Authorised"))
	mock.ExpectQuery(`(?s)FROM FS_CONSENT_AUTH_RESOURCE\s+WHERE CONSENT_ID = \?`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(authRows(authRow("AUTH-1", "CONSENT-1", "user-1", models.AuthStatusApproved)))
	// acc-1 is dropped, acc-3 returns, acc-4 is new
	mock.ExpectQuery(`(?s)FROM FS_CONSENT_MAPPING\s+WHERE AUTH_ID = \?`).
		WithArgs("AUTH-1", "org-1").
		WillReturnRows(sqlmock.NewRows(mappingColumnNames).
			AddRow("MAPPING-1", "AUTH-1", "acc-1", "read", models.MappingStatusActive, "org-1").
			AddRow("MAPPING-2", "AUTH-1", "acc-2", "read", models.MappingStatusActive, "org-1").
			AddRow("MAPPING-3", "AUTH-1", "acc-3", "read", models.MappingStatusInactive, "org-1"))
	mock.ExpectExec(`(?s)INSERT INTO FS_CONSENT_MAPPING`).
		WithArgs(sqlmock.AnyArg(), "AUTH-1", "acc-4", "read", models.MappingStatusActive, "org-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`(?s)UPDATE FS_CONSENT_MAPPING\s+SET MAPPING_STATUS`).
		WithArgs(models.MappingStatusInactive, "MAPPING-1", "org-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)UPDATE FS_CONSENT_MAPPING\s+SET MAPPING_STATUS`).
		WithArgs(models.MappingStatusActive, "MAPPING-3", "org-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)UPDATE FS_CONSENT\s+SET CURRENT_STATUS`).
		WithArgs("Authorised", sqlmock.AnyArg(), "CONSENT-1", "org-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)INSERT INTO FS_CONSENT_STATUS_AUDIT`).
		WithArgs(sqlmock.AnyArg(), "CONSENT-1", "Authorised", sqlmock.AnyArg(),
			models.ReasonReauthorize, "user-1", "Authorised", "org-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	expectDetailQueries(mock, "CONSENT-1",
		authRows(authRow("AUTH-1", "CONSENT-1", "user-1", models.AuthStatusApproved)),
		sqlmock.NewRows(mappingColumnNames))
	mock.ExpectExec(`(?s)INSERT INTO FS_CONSENT_HISTORY`).
		WithArgs(sqlmock.AnyArg(), "CONSENT-1", sqlmock.AnyArg(), models.ReasonReauthorize,
			sqlmock.AnyArg(), sqlmock.AnyArg(), "org-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	request := &models.ReauthorizeConsentRequest{
		AuthID:               "AUTH-1",
		UserID:               "user-1",
		AccountPermissionMap: map[string]string{"acc-2": "read", "acc-3": "read", "acc-4": "read"},
		CurrentConsentStatus: "Authorised",
		NewConsentStatus:     "Authorised",
	}

	_, err := svc.ReauthorizeConsent(context.Background(), request, "CONSENT-1", "org-1")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReauthorizeConsent_UserMismatch(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM FS_CONSENT WHERE .+ FOR UPDATE`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(consentRow("CONSENT-1", "Authorised"))
	mock.ExpectQuery(`(?s)FROM FS_CONSENT_AUTH_RESOURCE\s+WHERE CONSENT_ID = \?`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(authRows(authRow("AUTH-1", "CONSENT-1", "user-1", models.AuthStatusApproved)))
	mock.ExpectRollback()

	request := &models.ReauthorizeConsentRequest{
		AuthID:               "AUTH-1",
		UserID:               "someone-else",
		AccountPermissionMap: map[string]string{"acc-1": "read"},
		NewConsentStatus:     "Authorised",
	}

	_, err := svc.ReauthorizeConsent(context.Background(), request, "CONSENT-1", "org-1")

	require.Error(t, err)
	assert.Equal(t, models.ErrCodeUserIDMismatch, models.AsServiceError(err).Code)
}

func TestAmendConsent_RejectsRevokedConsent(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM FS_CONSENT WHERE .+ FOR UPDATE`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(consentRow("CONSENT-1", "Revoked"))
	mock.ExpectRollback()

	request := &models.ConsentAmendRequest{
		AuthID:           "AUTH-1",
		UserID:           "user-1",
		AmendmentReason:  "scope change",
		AmendedTimestamp: 1700000100,
	}

	_, err := svc.AmendConsent(context.Background(), request, "CONSENT-1", "org-1")

	require.Error(t, err)
	assert.Equal(t, models.ErrCodeConsentAlreadyRevoked, models.AsServiceError(err).Code)
}

func TestAmendConsent_RequiresAmendedTimestamp(t *testing.T) {
	svc := &ConsentService{cfg: testConfig(), logger: testLogger()}

	request := &models.ConsentAmendRequest{
		AuthID:          "AUTH-1",
		UserID:          "user-1",
		AmendmentReason: "scope change",
	}

	_, err := svc.AmendConsent(context.Background(), request, "CONSENT-1", "org-1")

	require.Error(t, err)
	assert.Equal(t, models.ErrCodeValidationError, models.AsServiceError(err).Code)
	assert.Contains(t, err.Error(), "amendedTimestamp is required")
}

func TestRevokeConsent_NotInApplicableStatuses(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM FS_CONSENT WHERE .+ FOR UPDATE`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(consentRow("CONSENT-1", "AwaitingAuthorisation"))
	mock.ExpectRollback()

	request := &models.ConsentRevokeRequest{
		UserID:             "user-1",
		ApplicableStatuses: []string{"Authorised"},
	}

	_, err := svc.RevokeConsent(context.Background(), request, "CONSENT-1", "org-1")

	require.Error(t, err)
	assert.Equal(t, models.ErrCodeInvalidStatus, models.AsServiceError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeConsent_ExtensionRejectionRollsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/consent-manage-delete", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.ExternalServiceResponse{
			Status:       models.ExternalStatusError,
			ErrorMessage: "revocation blocked by policy",
		})
	}))
	defer server.Close()

	svc, mock := newTestServiceWithExtension(t, &config.ServiceExtensionConfig{
		Enabled: true,
		BaseURL: server.URL,
		Endpoints: config.ExtensionEndpoints{
			ConsentManageDelete: "/consent-manage-delete",
		},
	})

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM FS_CONSENT WHERE .+ FOR UPDATE`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(consentRow("CONSENT-1", "Authorised"))
	expectDetailQueries(mock, "CONSENT-1",
		authRows(authRow("AUTH-1", "CONSENT-1", "user-1", models.AuthStatusApproved)),
		sqlmock.NewRows(mappingColumnNames))
	mock.ExpectRollback()

	request := &models.ConsentRevokeRequest{UserID: "user-1"}

	_, err := svc.RevokeConsent(context.Background(), request, "CONSENT-1", "org-1")

	require.Error(t, err)
	serviceErr := models.AsServiceError(err)
	assert.Equal(t, models.ErrCodeExtensionError, serviceErr.Code)
	assert.Contains(t, serviceErr.Message, "revocation blocked by policy")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDetailedConsent_ComposesChildRows(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`(?s)SELECT .+ FROM FS_CONSENT WHERE CONSENT_ID = \?`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(consentRow("CONSENT-1", "Authorised"))
	mock.ExpectQuery(`(?s)FROM FS_CONSENT_ATTRIBUTE\s+WHERE CONSENT_ID = \?`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(sqlmock.NewRows(attributeColumnNames).
			AddRow("CONSENT-1", "channel", "mobile", "org-1"))
	mock.ExpectQuery(`(?s)FROM FS_CONSENT_AUTH_RESOURCE\s+WHERE CONSENT_ID = \?`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(authRows(authRow("AUTH-1", "CONSENT-1", "user-1", models.AuthStatusApproved)))
	mock.ExpectQuery(`(?s)FROM FS_CONSENT_MAPPING m\s+INNER JOIN FS_CONSENT_AUTH_RESOURCE ar`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(sqlmock.NewRows(mappingColumnNames).
			AddRow("MAPPING-1", "AUTH-1", "acc-1", "read", models.MappingStatusActive, "org-1"))

	detailed, err := svc.GetDetailedConsent(context.Background(), "CONSENT-1", "org-1")

	require.NoError(t, err)
	assert.Equal(t, "mobile", detailed.ConsentAttributes["channel"])
	require.Len(t, detailed.AuthorizationResources, 1)
	require.Len(t, detailed.ConsentMappingResources, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateConsentAttributes_RequiresAttributes(t *testing.T) {
	svc := &ConsentService{cfg: testConfig(), logger: testLogger()}

	_, err := svc.UpdateConsentAttributes(context.Background(), "CONSENT-1", "org-1", nil)

	require.Error(t, err)
	assert.Equal(t, models.ErrCodeValidationError, models.AsServiceError(err).Code)
}

func TestStoreConsentFile_RejectsWrongStatus(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM FS_CONSENT WHERE .+ FOR UPDATE`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(consentRow("CONSENT-1", "Authorised"))
	mock.ExpectRollback()

	request := &models.ConsentFileUploadRequest{
		FileContent:      "file-body",
		NewConsentStatus: "AwaitingAuthorisation",
		ApplicableStatus: "AwaitingUpload",
	}

	err := svc.StoreConsentFile(context.Background(), request, "CONSENT-1", "org-1")

	require.Error(t, err)
	assert.Equal(t, models.ErrCodeInvalidStatus, models.AsServiceError(err).Code)
}
