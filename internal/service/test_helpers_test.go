package service

import (
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/wso2/consent-core-service/internal/config"
	"github.com/wso2/consent-core-service/internal/dao"
	"github.com/wso2/consent-core-service/internal/database"
	client "github.com/wso2/consent-core-service/internal/extension-client"
	"github.com/wso2/consent-core-service/internal/models"
)

var consentColumnNames = []string{
	"CONSENT_ID", "RECEIPT", "CREATED_TIME", "UPDATED_TIME", "CLIENT_ID",
	"CONSENT_TYPE", "CURRENT_STATUS", "CONSENT_FREQUENCY", "VALIDITY_TIME",
	"RECURRING_INDICATOR", "ORG_ID",
}

var authColumnNames = []string{
	"AUTH_ID", "CONSENT_ID", "AUTH_TYPE", "USER_ID", "AUTH_STATUS", "UPDATED_TIME", "ORG_ID",
}

var mappingColumnNames = []string{
	"MAPPING_ID", "AUTH_ID", "ACCOUNT_ID", "PERMISSION", "MAPPING_STATUS", "ORG_ID",
}

var attributeColumnNames = []string{"CONSENT_ID", "ATT_KEY", "ATT_VALUE", "ORG_ID"}

func testConfig() *config.Config {
	return &config.Config{
		Idempotency: config.IdempotencyConfig{
			Enabled:             true,
			KeyHeaderName:       "x-idempotency-key",
			AllowedTimeDuration: 60,
		},
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// newTestService wires a full service stack over a sqlmock connection with
// the extension service disabled
func newTestService(t *testing.T) (*ConsentService, sqlmock.Sqlmock) {
	return newTestServiceWithExtension(t, &config.ServiceExtensionConfig{})
}

func newTestServiceWithExtension(t *testing.T, extensionCfg *config.ServiceExtensionConfig) (*ConsentService, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	logger := testLogger()
	db := database.NewFromSqlx(sqlx.NewDb(mockDB, "mysql"), logger)

	historyDAO := dao.NewHistoryDAO(db)

	svc := NewConsentService(
		dao.NewConsentDAO(db),
		dao.NewAuthResourceDAO(db),
		dao.NewMappingDAO(db),
		dao.NewConsentAttributeDAO(db),
		dao.NewStatusAuditDAO(db),
		dao.NewConsentFileDAO(db),
		NewHistoryRecorder(historyDAO, logger),
		client.NewExtensionClient(extensionCfg, logger),
		db,
		testConfig(),
		logger,
	)

	return svc, mock
}

func consentRow(consentID, status string) *sqlmock.Rows {
	return sqlmock.NewRows(consentColumnNames).
		AddRow(consentID, []byte(`{"scope":"accounts"}`), int64(1700000000), int64(1700000000),
			"client-1", "accounts", status, 0, int64(0), false, "org-1")
}

func authRows(rows ...[]driverValue) *sqlmock.Rows {
	result := sqlmock.NewRows(authColumnNames)
	for _, row := range rows {
		result.AddRow(row...)
	}
	return result
}

type driverValue = driver.Value

func authRow(authID, consentID, userID, status string) []driverValue {
	return []driverValue{authID, consentID, models.AuthTypePrimary, userID, status, int64(1700000000), "org-1"}
}

// expectDetailQueries registers the attribute, auth resource and mapping
// selects issued when the service composes the detailed consent view
func expectDetailQueries(mock sqlmock.Sqlmock, consentID string, auths *sqlmock.Rows, mappings *sqlmock.Rows) {
	mock.ExpectQuery(`(?s)FROM FS_CONSENT_ATTRIBUTE\s+WHERE CONSENT_ID = \?`).
		WithArgs(consentID, "org-1").
		WillReturnRows(sqlmock.NewRows(attributeColumnNames))
	mock.ExpectQuery(`(?s)FROM FS_CONSENT_AUTH_RESOURCE\s+WHERE CONSENT_ID = \?`).
		WithArgs(consentID, "org-1").
		WillReturnRows(auths)
	mock.ExpectQuery(`(?s)FROM FS_CONSENT_MAPPING m\s+INNER JOIN FS_CONSENT_AUTH_RESOURCE ar`).
		WithArgs(consentID, "org-1").
		WillReturnRows(mappings)
}
