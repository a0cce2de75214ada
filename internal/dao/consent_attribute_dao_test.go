package dao

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsentAttributeDAO_GetByConsentID_BuildsMap(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewConsentAttributeDAO(db)

	mock.ExpectQuery(`(?s)FROM FS_CONSENT_ATTRIBUTE\s+WHERE CONSENT_ID = \?`).
		WithArgs("CONSENT-1", "org-1").
		WillReturnRows(sqlmock.NewRows([]string{"CONSENT_ID", "ATT_KEY", "ATT_VALUE", "ORG_ID"}).
			AddRow("CONSENT-1", "channel", "mobile", "org-1").
			AddRow("CONSENT-1", "version", "v2", "org-1"))

	attributes, err := dao.GetByConsentID(context.Background(), "CONSENT-1", "org-1")

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"channel": "mobile", "version": "v2"}, attributes)
}

func TestConsentAttributeDAO_FindConsentIDsByAttribute(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewConsentAttributeDAO(db)

	mock.ExpectQuery(`(?s)SELECT CONSENT_ID\s+FROM FS_CONSENT_ATTRIBUTE\s+WHERE ATT_KEY = \? AND ATT_VALUE = \?`).
		WithArgs("x-idempotency-key", "key-123", "org-1").
		WillReturnRows(sqlmock.NewRows([]string{"CONSENT_ID"}).AddRow("CONSENT-1"))

	consentIDs, err := dao.FindConsentIDsByAttribute(context.Background(), "x-idempotency-key", "key-123", "org-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"CONSENT-1"}, consentIDs)
}

func TestConsentAttributeDAO_DeleteKeysWithTx(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewConsentAttributeDAO(db)

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)DELETE FROM FS_CONSENT_ATTRIBUTE\s+WHERE CONSENT_ID = \? AND ORG_ID = \? AND ATT_KEY IN \(\?,\?\)`).
		WithArgs("CONSENT-1", "org-1", "channel", "version").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background())
	require.NoError(t, err)

	err = dao.DeleteKeysWithTx(context.Background(), tx, "CONSENT-1", "org-1", []string{"channel", "version"})

	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsentAttributeDAO_DeleteKeysWithTx_EmptyIsNoOp(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewConsentAttributeDAO(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background())
	require.NoError(t, err)

	require.NoError(t, dao.DeleteKeysWithTx(context.Background(), tx, "CONSENT-1", "org-1", nil))
	require.NoError(t, tx.Commit())
}
