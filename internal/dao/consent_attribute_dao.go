package dao

import (
	"context"
	"fmt"
	"strings"

	"github.com/wso2/consent-core-service/internal/database"
)

// consentAttributeRow mirrors one FS_CONSENT_ATTRIBUTE row
type consentAttributeRow struct {
	ConsentID string `db:"CONSENT_ID"`
	AttKey    string `db:"ATT_KEY"`
	AttValue  string `db:"ATT_VALUE"`
	OrgID     string `db:"ORG_ID"`
}

// ConsentAttributeDAO handles database operations for consent attributes
type ConsentAttributeDAO struct {
	db *database.DB
}

// NewConsentAttributeDAO creates a new ConsentAttributeDAO instance
func NewConsentAttributeDAO(db *database.DB) *ConsentAttributeDAO {
	return &ConsentAttributeDAO{db: db}
}

// CreateWithTx inserts consent attributes using a transaction
func (dao *ConsentAttributeDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, consentID, orgID string, attributes map[string]string) error {
	if len(attributes) == 0 {
		return nil
	}

	query := `
		INSERT INTO FS_CONSENT_ATTRIBUTE (CONSENT_ID, ATT_KEY, ATT_VALUE, ORG_ID)
		VALUES (?, ?, ?, ?)
	`

	for key, value := range attributes {
		_, err := tx.ExecContext(ctx, query, consentID, key, value, orgID)
		if err != nil {
			return fmt.Errorf("failed to create consent attribute %s: %w", key, err)
		}
	}

	return nil
}

// GetByConsentID retrieves all attributes of a consent as a map
func (dao *ConsentAttributeDAO) GetByConsentID(ctx context.Context, consentID, orgID string) (map[string]string, error) {
	query := `
		SELECT CONSENT_ID, ATT_KEY, ATT_VALUE, ORG_ID
		FROM FS_CONSENT_ATTRIBUTE
		WHERE CONSENT_ID = ? AND ORG_ID = ?
	`

	var rows []consentAttributeRow
	err := dao.db.SelectContext(ctx, &rows, query, consentID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get consent attributes: %w", err)
	}

	attributes := make(map[string]string, len(rows))
	for _, row := range rows {
		attributes[row.AttKey] = row.AttValue
	}

	return attributes, nil
}

// GetByConsentIDWithTx retrieves all attributes of a consent as a map using a
// transaction
func (dao *ConsentAttributeDAO) GetByConsentIDWithTx(ctx context.Context, tx *database.Transaction, consentID, orgID string) (map[string]string, error) {
	query := `
		SELECT CONSENT_ID, ATT_KEY, ATT_VALUE, ORG_ID
		FROM FS_CONSENT_ATTRIBUTE
		WHERE CONSENT_ID = ? AND ORG_ID = ?
	`

	var rows []consentAttributeRow
	err := tx.SelectContext(ctx, &rows, query, consentID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get consent attributes: %w", err)
	}

	attributes := make(map[string]string, len(rows))
	for _, row := range rows {
		attributes[row.AttKey] = row.AttValue
	}

	return attributes, nil
}

// UpsertWithTx updates existing attribute keys and inserts new ones using a
// transaction. Keys absent from the input are left untouched.
func (dao *ConsentAttributeDAO) UpsertWithTx(ctx context.Context, tx *database.Transaction, consentID, orgID string, attributes map[string]string) error {
	if len(attributes) == 0 {
		return nil
	}

	query := `
		INSERT INTO FS_CONSENT_ATTRIBUTE (CONSENT_ID, ATT_KEY, ATT_VALUE, ORG_ID)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE ATT_VALUE = VALUES(ATT_VALUE)
	`

	for key, value := range attributes {
		_, err := tx.ExecContext(ctx, query, consentID, key, value, orgID)
		if err != nil {
			return fmt.Errorf("failed to upsert consent attribute %s: %w", key, err)
		}
	}

	return nil
}

// DeleteKeysWithTx removes the given attribute keys from a consent using a
// transaction
func (dao *ConsentAttributeDAO) DeleteKeysWithTx(ctx context.Context, tx *database.Transaction, consentID, orgID string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(keys)-1) + "?"
	query := fmt.Sprintf(`
		DELETE FROM FS_CONSENT_ATTRIBUTE
		WHERE CONSENT_ID = ? AND ORG_ID = ? AND ATT_KEY IN (%s)
	`, placeholders)

	args := make([]interface{}, 0, len(keys)+2)
	args = append(args, consentID, orgID)
	for _, key := range keys {
		args = append(args, key)
	}

	_, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete consent attributes: %w", err)
	}

	return nil
}

// FindConsentIDsByAttribute retrieves the IDs of consents carrying the given
// attribute key/value pair. Used by the idempotency check to look up prior
// submissions by idempotency key.
func (dao *ConsentAttributeDAO) FindConsentIDsByAttribute(ctx context.Context, key, value, orgID string) ([]string, error) {
	query := `
		SELECT CONSENT_ID
		FROM FS_CONSENT_ATTRIBUTE
		WHERE ATT_KEY = ? AND ATT_VALUE = ? AND ORG_ID = ?
	`

	var consentIDs []string
	err := dao.db.SelectContext(ctx, &consentIDs, query, key, value, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to find consents by attribute: %w", err)
	}

	return consentIDs, nil
}
