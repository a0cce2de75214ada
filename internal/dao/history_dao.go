package dao

import (
	"context"
	"fmt"

	"github.com/wso2/consent-core-service/internal/database"
	"github.com/wso2/consent-core-service/internal/models"
)

// HistoryDAO handles database operations for consent amendment history.
// History rows are append-only snapshots of the consent as it stood before a
// mutation.
type HistoryDAO struct {
	db *database.DB
}

// NewHistoryDAO creates a new HistoryDAO instance
func NewHistoryDAO(db *database.DB) *HistoryDAO {
	return &HistoryDAO{db: db}
}

// CreateWithTx appends a history record using a transaction
func (dao *HistoryDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, history *models.ConsentHistory) error {
	query := `
		INSERT INTO FS_CONSENT_HISTORY (
			HISTORY_ID, CONSENT_ID, HISTORY_TIME, REASON, SNAPSHOT, DELTAS, ORG_ID
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		history.HistoryID,
		history.ConsentID,
		history.Timestamp,
		history.Reason,
		history.Snapshot,
		history.Deltas,
		history.OrgID,
	)

	if err != nil {
		return fmt.Errorf("failed to create history record with transaction: %w", err)
	}

	return nil
}

// GetByConsentID retrieves all history records of a consent, newest first
func (dao *HistoryDAO) GetByConsentID(ctx context.Context, consentID, orgID string) ([]models.ConsentHistory, error) {
	query := `
		SELECT HISTORY_ID, CONSENT_ID, HISTORY_TIME, REASON, SNAPSHOT, DELTAS, ORG_ID
		FROM FS_CONSENT_HISTORY
		WHERE CONSENT_ID = ? AND ORG_ID = ?
		ORDER BY HISTORY_TIME DESC
	`

	var records []models.ConsentHistory
	err := dao.db.SelectContext(ctx, &records, query, consentID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history records: %w", err)
	}

	return records, nil
}
