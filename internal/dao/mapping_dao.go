package dao

import (
	"context"
	"fmt"
	"strings"

	"github.com/wso2/consent-core-service/internal/database"
	"github.com/wso2/consent-core-service/internal/models"
)

// MappingDAO handles database operations for consent account mappings
type MappingDAO struct {
	db *database.DB
}

// NewMappingDAO creates a new MappingDAO instance
func NewMappingDAO(db *database.DB) *MappingDAO {
	return &MappingDAO{db: db}
}

// CreateWithTx inserts a new consent mapping using a transaction
func (dao *MappingDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, mapping *models.ConsentMapping) error {
	query := `
		INSERT INTO FS_CONSENT_MAPPING (
			MAPPING_ID, AUTH_ID, ACCOUNT_ID, PERMISSION, MAPPING_STATUS, ORG_ID
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		mapping.MappingID,
		mapping.AuthID,
		mapping.AccountID,
		mapping.Permission,
		mapping.MappingStatus,
		mapping.OrgID,
	)

	if err != nil {
		return fmt.Errorf("failed to create consent mapping with transaction: %w", err)
	}

	return nil
}

// GetByAuthID retrieves all mappings for an authorization resource
func (dao *MappingDAO) GetByAuthID(ctx context.Context, authID, orgID string) ([]models.ConsentMapping, error) {
	query := `
		SELECT MAPPING_ID, AUTH_ID, ACCOUNT_ID, PERMISSION, MAPPING_STATUS, ORG_ID
		FROM FS_CONSENT_MAPPING
		WHERE AUTH_ID = ? AND ORG_ID = ?
	`

	var mappings []models.ConsentMapping
	err := dao.db.SelectContext(ctx, &mappings, query, authID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mappings by auth ID: %w", err)
	}

	return mappings, nil
}

// GetByAuthIDWithTx retrieves all mappings for an authorization resource using
// a transaction
func (dao *MappingDAO) GetByAuthIDWithTx(ctx context.Context, tx *database.Transaction, authID, orgID string) ([]models.ConsentMapping, error) {
	query := `
		SELECT MAPPING_ID, AUTH_ID, ACCOUNT_ID, PERMISSION, MAPPING_STATUS, ORG_ID
		FROM FS_CONSENT_MAPPING
		WHERE AUTH_ID = ? AND ORG_ID = ?
	`

	var mappings []models.ConsentMapping
	err := tx.SelectContext(ctx, &mappings, query, authID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mappings by auth ID: %w", err)
	}

	return mappings, nil
}

// GetByConsentID retrieves all mappings across every authorization resource of
// a consent
func (dao *MappingDAO) GetByConsentID(ctx context.Context, consentID, orgID string) ([]models.ConsentMapping, error) {
	query := `
		SELECT m.MAPPING_ID, m.AUTH_ID, m.ACCOUNT_ID, m.PERMISSION, m.MAPPING_STATUS, m.ORG_ID
		FROM FS_CONSENT_MAPPING m
		INNER JOIN FS_CONSENT_AUTH_RESOURCE ar ON m.AUTH_ID = ar.AUTH_ID AND m.ORG_ID = ar.ORG_ID
		WHERE ar.CONSENT_ID = ? AND m.ORG_ID = ?
	`

	var mappings []models.ConsentMapping
	err := dao.db.SelectContext(ctx, &mappings, query, consentID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mappings by consent ID: %w", err)
	}

	return mappings, nil
}

// GetByConsentIDWithTx retrieves all mappings of a consent using a transaction
func (dao *MappingDAO) GetByConsentIDWithTx(ctx context.Context, tx *database.Transaction, consentID, orgID string) ([]models.ConsentMapping, error) {
	query := `
		SELECT m.MAPPING_ID, m.AUTH_ID, m.ACCOUNT_ID, m.PERMISSION, m.MAPPING_STATUS, m.ORG_ID
		FROM FS_CONSENT_MAPPING m
		INNER JOIN FS_CONSENT_AUTH_RESOURCE ar ON m.AUTH_ID = ar.AUTH_ID AND m.ORG_ID = ar.ORG_ID
		WHERE ar.CONSENT_ID = ? AND m.ORG_ID = ?
	`

	var mappings []models.ConsentMapping
	err := tx.SelectContext(ctx, &mappings, query, consentID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mappings by consent ID: %w", err)
	}

	return mappings, nil
}

// UpdateStatusForIDsWithTx flips the status of the given mappings using a
// transaction. Mapping rows are never deleted; deactivation is a status flip.
func (dao *MappingDAO) UpdateStatusForIDsWithTx(ctx context.Context, tx *database.Transaction, mappingIDs []string, orgID, status string) error {
	if len(mappingIDs) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(mappingIDs)-1) + "?"
	query := fmt.Sprintf(`
		UPDATE FS_CONSENT_MAPPING
		SET MAPPING_STATUS = ?
		WHERE MAPPING_ID IN (%s) AND ORG_ID = ?
	`, placeholders)

	args := make([]interface{}, 0, len(mappingIDs)+2)
	args = append(args, status)
	for _, id := range mappingIDs {
		args = append(args, id)
	}
	args = append(args, orgID)

	_, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update mapping statuses: %w", err)
	}

	return nil
}

// UpdateStatusByAuthIDWithTx flips the status of every mapping under an
// authorization resource using a transaction
func (dao *MappingDAO) UpdateStatusByAuthIDWithTx(ctx context.Context, tx *database.Transaction, authID, orgID, status string) error {
	query := `
		UPDATE FS_CONSENT_MAPPING
		SET MAPPING_STATUS = ?
		WHERE AUTH_ID = ? AND ORG_ID = ?
	`

	_, err := tx.ExecContext(ctx, query, status, authID, orgID)
	if err != nil {
		return fmt.Errorf("failed to update mapping statuses by auth ID: %w", err)
	}

	return nil
}
