package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wso2/consent-core-service/internal/database"
	"github.com/wso2/consent-core-service/internal/models"
)

// ConsentFileDAO handles database operations for consent files
type ConsentFileDAO struct {
	db *database.DB
}

// NewConsentFileDAO creates a new ConsentFileDAO instance
func NewConsentFileDAO(db *database.DB) *ConsentFileDAO {
	return &ConsentFileDAO{db: db}
}

// CreateWithTx stores a consent file using a transaction
func (dao *ConsentFileDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, file *models.ConsentFile) error {
	query := `
		INSERT INTO FS_CONSENT_FILE (CONSENT_ID, CONSENT_FILE, ORG_ID)
		VALUES (?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query, file.ConsentID, file.ConsentFile, file.OrgID)
	if err != nil {
		return fmt.Errorf("failed to store consent file with transaction: %w", err)
	}

	return nil
}

// GetByConsentID retrieves the consent file of a consent
func (dao *ConsentFileDAO) GetByConsentID(ctx context.Context, consentID, orgID string) (*models.ConsentFile, error) {
	query := `
		SELECT CONSENT_ID, CONSENT_FILE, ORG_ID
		FROM FS_CONSENT_FILE
		WHERE CONSENT_ID = ? AND ORG_ID = ?
	`

	var file models.ConsentFile
	err := dao.db.GetContext(ctx, &file, query, consentID, orgID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewServiceError(models.ErrCodeFileNotFound,
				fmt.Sprintf("consent file not found for consent: %s", consentID))
		}
		return nil, fmt.Errorf("failed to get consent file: %w", err)
	}

	return &file, nil
}
