package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wso2/consent-core-service/internal/database"
	"github.com/wso2/consent-core-service/internal/models"
)

// AuthResourceDAO handles database operations for authorization resources
type AuthResourceDAO struct {
	db *database.DB
}

// NewAuthResourceDAO creates a new AuthResourceDAO instance
func NewAuthResourceDAO(db *database.DB) *AuthResourceDAO {
	return &AuthResourceDAO{db: db}
}

// CreateWithTx inserts a new authorization resource using a transaction
func (dao *AuthResourceDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, auth *models.AuthResource) error {
	query := `
		INSERT INTO FS_CONSENT_AUTH_RESOURCE (
			AUTH_ID, CONSENT_ID, AUTH_TYPE, USER_ID, AUTH_STATUS, UPDATED_TIME, ORG_ID
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		auth.AuthID,
		auth.ConsentID,
		auth.AuthType,
		auth.UserID,
		auth.AuthStatus,
		auth.UpdatedTime,
		auth.OrgID,
	)

	if err != nil {
		return fmt.Errorf("failed to create auth resource with transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an authorization resource by ID
func (dao *AuthResourceDAO) GetByID(ctx context.Context, authID, orgID string) (*models.AuthResource, error) {
	query := `
		SELECT AUTH_ID, CONSENT_ID, AUTH_TYPE, USER_ID, AUTH_STATUS, UPDATED_TIME, ORG_ID
		FROM FS_CONSENT_AUTH_RESOURCE
		WHERE AUTH_ID = ? AND ORG_ID = ?
	`

	var auth models.AuthResource
	err := dao.db.GetContext(ctx, &auth, query, authID, orgID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewServiceError(models.ErrCodeAuthResourceNotFound,
				fmt.Sprintf("auth resource not found: %s", authID))
		}
		return nil, fmt.Errorf("failed to get auth resource: %w", err)
	}

	return &auth, nil
}

// GetByConsentID retrieves all authorization resources for a consent
func (dao *AuthResourceDAO) GetByConsentID(ctx context.Context, consentID, orgID string) ([]models.AuthResource, error) {
	query := `
		SELECT AUTH_ID, CONSENT_ID, AUTH_TYPE, USER_ID, AUTH_STATUS, UPDATED_TIME, ORG_ID
		FROM FS_CONSENT_AUTH_RESOURCE
		WHERE CONSENT_ID = ? AND ORG_ID = ?
		ORDER BY UPDATED_TIME ASC
	`

	var auths []models.AuthResource
	err := dao.db.SelectContext(ctx, &auths, query, consentID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth resources by consent ID: %w", err)
	}

	return auths, nil
}

// GetByConsentIDWithTx retrieves all authorization resources for a consent
// using a transaction
func (dao *AuthResourceDAO) GetByConsentIDWithTx(ctx context.Context, tx *database.Transaction, consentID, orgID string) ([]models.AuthResource, error) {
	query := `
		SELECT AUTH_ID, CONSENT_ID, AUTH_TYPE, USER_ID, AUTH_STATUS, UPDATED_TIME, ORG_ID
		FROM FS_CONSENT_AUTH_RESOURCE
		WHERE CONSENT_ID = ? AND ORG_ID = ?
		ORDER BY UPDATED_TIME ASC
	`

	var auths []models.AuthResource
	err := tx.SelectContext(ctx, &auths, query, consentID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth resources by consent ID: %w", err)
	}

	return auths, nil
}

// UpdateStatusWithTx updates the status of an authorization resource using a transaction
func (dao *AuthResourceDAO) UpdateStatusWithTx(ctx context.Context, tx *database.Transaction, authID, orgID, status string, updatedTime int64) error {
	query := `
		UPDATE FS_CONSENT_AUTH_RESOURCE
		SET AUTH_STATUS = ?, UPDATED_TIME = ?
		WHERE AUTH_ID = ? AND ORG_ID = ?
	`

	result, err := tx.ExecContext(ctx, query, status, updatedTime, authID, orgID)
	if err != nil {
		return fmt.Errorf("failed to update auth resource status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.NewServiceError(models.ErrCodeAuthResourceNotFound,
			fmt.Sprintf("auth resource not found: %s", authID))
	}

	return nil
}

// UpdateUserWithTx binds a user to an authorization resource using a transaction
func (dao *AuthResourceDAO) UpdateUserWithTx(ctx context.Context, tx *database.Transaction, authID, orgID, userID string, updatedTime int64) error {
	query := `
		UPDATE FS_CONSENT_AUTH_RESOURCE
		SET USER_ID = ?, UPDATED_TIME = ?
		WHERE AUTH_ID = ? AND ORG_ID = ?
	`

	result, err := tx.ExecContext(ctx, query, userID, updatedTime, authID, orgID)
	if err != nil {
		return fmt.Errorf("failed to update auth resource user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.NewServiceError(models.ErrCodeAuthResourceNotFound,
			fmt.Sprintf("auth resource not found: %s", authID))
	}

	return nil
}
