package dao

import (
	"context"
	"fmt"
	"strings"

	"github.com/wso2/consent-core-service/internal/database"
	"github.com/wso2/consent-core-service/internal/models"
)

// StatusAuditDAO handles database operations for consent status audit records
type StatusAuditDAO struct {
	db *database.DB
}

// NewStatusAuditDAO creates a new StatusAuditDAO instance
func NewStatusAuditDAO(db *database.DB) *StatusAuditDAO {
	return &StatusAuditDAO{db: db}
}

// CreateWithTx appends a status audit record using a transaction. Audit rows
// are immutable once written.
func (dao *StatusAuditDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, audit *models.ConsentStatusAudit) error {
	query := `
		INSERT INTO FS_CONSENT_STATUS_AUDIT (
			STATUS_AUDIT_ID, CONSENT_ID, CURRENT_STATUS, ACTION_TIME,
			REASON, ACTION_BY, PREVIOUS_STATUS, ORG_ID
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		audit.StatusAuditID,
		audit.ConsentID,
		audit.CurrentStatus,
		audit.ActionTime,
		audit.Reason,
		audit.ActionBy,
		audit.PreviousStatus,
		audit.OrgID,
	)

	if err != nil {
		return fmt.Errorf("failed to create status audit record with transaction: %w", err)
	}

	return nil
}

// GetByConsentID retrieves all audit records of a consent, newest first
func (dao *StatusAuditDAO) GetByConsentID(ctx context.Context, consentID, orgID string) ([]models.ConsentStatusAudit, error) {
	query := `
		SELECT STATUS_AUDIT_ID, CONSENT_ID, CURRENT_STATUS, ACTION_TIME,
		       REASON, ACTION_BY, PREVIOUS_STATUS, ORG_ID
		FROM FS_CONSENT_STATUS_AUDIT
		WHERE CONSENT_ID = ? AND ORG_ID = ?
		ORDER BY ACTION_TIME DESC
	`

	var audits []models.ConsentStatusAudit
	err := dao.db.SelectContext(ctx, &audits, query, consentID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status audit records: %w", err)
	}

	return audits, nil
}

// Search searches audit records based on provided parameters, newest first
func (dao *StatusAuditDAO) Search(ctx context.Context, params *models.AuditSearchParams) ([]models.ConsentStatusAudit, int, error) {
	var conditions []string
	var args []interface{}

	conditions = append(conditions, "ORG_ID = ?")
	args = append(args, params.OrgID)

	if len(params.ConsentIDs) > 0 {
		placeholders := strings.Repeat("?,", len(params.ConsentIDs)-1) + "?"
		conditions = append(conditions, fmt.Sprintf("CONSENT_ID IN (%s)", placeholders))
		for _, id := range params.ConsentIDs {
			args = append(args, id)
		}
	}

	if params.Status != "" {
		conditions = append(conditions, "CURRENT_STATUS = ?")
		args = append(args, params.Status)
	}

	if params.ActionBy != "" {
		conditions = append(conditions, "ACTION_BY = ?")
		args = append(args, params.ActionBy)
	}

	if params.FromTime != nil {
		conditions = append(conditions, "ACTION_TIME >= ?")
		args = append(args, *params.FromTime)
	}

	if params.ToTime != nil {
		conditions = append(conditions, "ACTION_TIME <= ?")
		args = append(args, *params.ToTime)
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM FS_CONSENT_STATUS_AUDIT WHERE %s", whereClause)
	var total int
	err := dao.db.GetContext(ctx, &total, countQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count status audit records: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT STATUS_AUDIT_ID, CONSENT_ID, CURRENT_STATUS, ACTION_TIME,
		       REASON, ACTION_BY, PREVIOUS_STATUS, ORG_ID
		FROM FS_CONSENT_STATUS_AUDIT
		WHERE %s
		ORDER BY ACTION_TIME DESC
		LIMIT ? OFFSET ?
	`, whereClause)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit, offset)

	var audits []models.ConsentStatusAudit
	err = dao.db.SelectContext(ctx, &audits, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search status audit records: %w", err)
	}

	return audits, total, nil
}
