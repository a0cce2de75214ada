package dao

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/wso2/consent-core-service/internal/database"
)

var consentColumnNames = []string{
	"CONSENT_ID", "RECEIPT", "CREATED_TIME", "UPDATED_TIME", "CLIENT_ID",
	"CONSENT_TYPE", "CURRENT_STATUS", "CONSENT_FREQUENCY", "VALIDITY_TIME",
	"RECURRING_INDICATOR", "ORG_ID",
}

// newMockDB wires a sqlmock connection behind the database wrapper
func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return database.NewFromSqlx(sqlx.NewDb(mockDB, "mysql"), logger), mock
}

func consentRow(consentID, status string) *sqlmock.Rows {
	return sqlmock.NewRows(consentColumnNames).
		AddRow(consentID, []byte(`{"scope":"accounts"}`), int64(1700000000), int64(1700000000),
			"client-1", "accounts", status, 0, int64(0), false, "org-1")
}
