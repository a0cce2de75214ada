package dao

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/wso2/consent-core-service/internal/database"
	"github.com/wso2/consent-core-service/internal/models"
)

const consentColumns = `CONSENT_ID, RECEIPT, CREATED_TIME, UPDATED_TIME, CLIENT_ID,
       CONSENT_TYPE, CURRENT_STATUS, CONSENT_FREQUENCY, VALIDITY_TIME,
       RECURRING_INDICATOR, ORG_ID`

// ConsentDAO handles database operations for consents
type ConsentDAO struct {
	db *database.DB
}

// NewConsentDAO creates a new ConsentDAO instance
func NewConsentDAO(db *database.DB) *ConsentDAO {
	return &ConsentDAO{db: db}
}

// CreateWithTx inserts a new consent using a transaction
func (dao *ConsentDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, consent *models.Consent) error {
	query := `
		INSERT INTO FS_CONSENT (
			CONSENT_ID, RECEIPT, CREATED_TIME, UPDATED_TIME, CLIENT_ID,
			CONSENT_TYPE, CURRENT_STATUS, CONSENT_FREQUENCY, VALIDITY_TIME,
			RECURRING_INDICATOR, ORG_ID
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		consent.ConsentID,
		consent.Receipt,
		consent.CreatedTime,
		consent.UpdatedTime,
		consent.ClientID,
		consent.ConsentType,
		consent.CurrentStatus,
		consent.ConsentFrequency,
		consent.ValidityPeriod,
		consent.RecurringIndicator,
		consent.OrgID,
	)

	if err != nil {
		return fmt.Errorf("failed to create consent with transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a consent by ID and organization ID
func (dao *ConsentDAO) GetByID(ctx context.Context, consentID, orgID string) (*models.Consent, error) {
	query := fmt.Sprintf(`SELECT %s FROM FS_CONSENT WHERE CONSENT_ID = ? AND ORG_ID = ?`, consentColumns)

	var consent models.Consent
	err := dao.db.GetContext(ctx, &consent, query, consentID, orgID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewServiceError(models.ErrCodeConsentNotFound,
				fmt.Sprintf("consent not found: %s", consentID))
		}
		return nil, fmt.Errorf("failed to get consent: %w", err)
	}

	return &consent, nil
}

// GetByIDForUpdate retrieves a consent by ID inside a transaction, locking the
// row so that concurrent mutators of the same consent are serialized.
func (dao *ConsentDAO) GetByIDForUpdate(ctx context.Context, tx *database.Transaction, consentID, orgID string) (*models.Consent, error) {
	query := fmt.Sprintf(`SELECT %s FROM FS_CONSENT WHERE CONSENT_ID = ? AND ORG_ID = ? FOR UPDATE`, consentColumns)

	var consent models.Consent
	err := tx.GetContext(ctx, &consent, query, consentID, orgID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewServiceError(models.ErrCodeConsentNotFound,
				fmt.Sprintf("consent not found: %s", consentID))
		}
		return nil, fmt.Errorf("failed to get consent for update: %w", err)
	}

	return &consent, nil
}

// UpdateStatusWithTx updates only the status of a consent using a transaction
func (dao *ConsentDAO) UpdateStatusWithTx(ctx context.Context, tx *database.Transaction, consentID, orgID, status string, updatedTime int64) error {
	query := `
		UPDATE FS_CONSENT
		SET CURRENT_STATUS = ?, UPDATED_TIME = ?
		WHERE CONSENT_ID = ? AND ORG_ID = ?
	`

	result, err := tx.ExecContext(ctx, query, status, updatedTime, consentID, orgID)
	if err != nil {
		return fmt.Errorf("failed to update consent status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.NewServiceError(models.ErrCodeConsentNotFound,
			fmt.Sprintf("consent not found: %s", consentID))
	}

	return nil
}

// UpdateReceiptWithTx updates the receipt of a consent using a transaction
func (dao *ConsentDAO) UpdateReceiptWithTx(ctx context.Context, tx *database.Transaction, consentID, orgID string, receipt models.JSON, updatedTime int64) error {
	query := `
		UPDATE FS_CONSENT
		SET RECEIPT = ?, UPDATED_TIME = ?
		WHERE CONSENT_ID = ? AND ORG_ID = ?
	`

	_, err := tx.ExecContext(ctx, query, receipt, updatedTime, consentID, orgID)
	if err != nil {
		return fmt.Errorf("failed to update consent receipt: %w", err)
	}

	return nil
}

// UpdateValidityPeriodWithTx updates the validity period of a consent using a transaction
func (dao *ConsentDAO) UpdateValidityPeriodWithTx(ctx context.Context, tx *database.Transaction, consentID, orgID string, validityPeriod, updatedTime int64) error {
	query := `
		UPDATE FS_CONSENT
		SET VALIDITY_TIME = ?, UPDATED_TIME = ?
		WHERE CONSENT_ID = ? AND ORG_ID = ?
	`

	_, err := tx.ExecContext(ctx, query, validityPeriod, updatedTime, consentID, orgID)
	if err != nil {
		return fmt.Errorf("failed to update consent validity period: %w", err)
	}

	return nil
}

// GetApplicableConsentsWithTx retrieves consents of the given client and type
// bound to the given user that are in the applicable status. Used by the
// exclusive-consent flow to find prior consents to transition, so the rows are
// locked for the remainder of the transaction.
func (dao *ConsentDAO) GetApplicableConsentsWithTx(ctx context.Context, tx *database.Transaction, clientID, consentType, userID, applicableStatus, orgID string) ([]models.Consent, error) {
	query := `
		SELECT DISTINCT c.CONSENT_ID, c.RECEIPT, c.CREATED_TIME, c.UPDATED_TIME, c.CLIENT_ID,
		       c.CONSENT_TYPE, c.CURRENT_STATUS, c.CONSENT_FREQUENCY, c.VALIDITY_TIME,
		       c.RECURRING_INDICATOR, c.ORG_ID
		FROM FS_CONSENT c
		INNER JOIN FS_CONSENT_AUTH_RESOURCE ar ON c.CONSENT_ID = ar.CONSENT_ID AND c.ORG_ID = ar.ORG_ID
		WHERE c.CLIENT_ID = ? AND c.CONSENT_TYPE = ? AND ar.USER_ID = ?
		  AND c.CURRENT_STATUS = ? AND c.ORG_ID = ?
		FOR UPDATE
	`

	var consents []models.Consent
	err := tx.SelectContext(ctx, &consents, query, clientID, consentType, userID, applicableStatus, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get applicable consents: %w", err)
	}

	return consents, nil
}

// Search searches for consents based on provided parameters. Results are
// ordered by creation time.
func (dao *ConsentDAO) Search(ctx context.Context, params *models.ConsentSearchParams) ([]models.Consent, int, error) {
	var conditions []string
	var args []interface{}

	// Always filter by organization
	conditions = append(conditions, "c.ORG_ID = ?")
	args = append(args, params.OrgID)

	addInFilter := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		placeholders := strings.Repeat("?,", len(values)-1) + "?"
		conditions = append(conditions, fmt.Sprintf("%s IN (%s)", column, placeholders))
		for _, v := range values {
			args = append(args, v)
		}
	}

	addInFilter("c.CONSENT_ID", params.ConsentIDs)
	addInFilter("c.CLIENT_ID", params.ClientIDs)
	addInFilter("c.CONSENT_TYPE", params.ConsentTypes)
	addInFilter("c.CURRENT_STATUS", params.ConsentStatuses)

	// User IDs filter requires a join with the auth resource table
	var joinClause string
	if len(params.UserIDs) > 0 {
		joinClause += " INNER JOIN FS_CONSENT_AUTH_RESOURCE ar ON c.CONSENT_ID = ar.CONSENT_ID AND c.ORG_ID = ar.ORG_ID"
		addInFilter("ar.USER_ID", params.UserIDs)
	}

	// Attribute equality filter requires a join with the attribute table
	if params.AttributeKey != "" {
		joinClause += " INNER JOIN FS_CONSENT_ATTRIBUTE at ON c.CONSENT_ID = at.CONSENT_ID AND c.ORG_ID = at.ORG_ID"
		conditions = append(conditions, "at.ATT_KEY = ?")
		args = append(args, params.AttributeKey)
		if params.AttributeValue != "" {
			conditions = append(conditions, "at.ATT_VALUE = ?")
			args = append(args, params.AttributeValue)
		}
	}

	if params.FromTime != nil {
		conditions = append(conditions, "c.CREATED_TIME >= ?")
		args = append(args, *params.FromTime)
	}

	if params.ToTime != nil {
		conditions = append(conditions, "c.CREATED_TIME <= ?")
		args = append(args, *params.ToTime)
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(DISTINCT c.CONSENT_ID) FROM FS_CONSENT c%s WHERE %s", joinClause, whereClause)
	var total int
	err := dao.db.GetContext(ctx, &total, countQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count consents: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT c.CONSENT_ID, c.RECEIPT, c.CREATED_TIME, c.UPDATED_TIME, c.CLIENT_ID,
		       c.CONSENT_TYPE, c.CURRENT_STATUS, c.CONSENT_FREQUENCY, c.VALIDITY_TIME,
		       c.RECURRING_INDICATOR, c.ORG_ID
		FROM FS_CONSENT c%s
		WHERE %s
		ORDER BY c.CREATED_TIME ASC
		LIMIT ? OFFSET ?
	`, joinClause, whereClause)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit, offset)

	var consents []models.Consent
	err = dao.db.SelectContext(ctx, &consents, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search consents: %w", err)
	}

	return consents, total, nil
}
