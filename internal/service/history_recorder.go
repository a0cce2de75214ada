package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wso2/consent-core-service/internal/dao"
	"github.com/wso2/consent-core-service/internal/database"
	"github.com/wso2/consent-core-service/internal/models"
	"github.com/wso2/consent-core-service/pkg/utils"
)

// HistoryRecorder appends amendment history records. Recording always happens
// inside the transaction of the mutation it documents, so a consent change and
// its history entry commit or roll back together.
type HistoryRecorder struct {
	historyDAO *dao.HistoryDAO
	logger     *logrus.Logger
}

// NewHistoryRecorder creates a new HistoryRecorder instance
func NewHistoryRecorder(historyDAO *dao.HistoryDAO, logger *logrus.Logger) *HistoryRecorder {
	return &HistoryRecorder{
		historyDAO: historyDAO,
		logger:     logger,
	}
}

// Record appends a history entry for a consent mutation. The snapshot captures
// the detailed consent as it stood when the mutation ran; deltas carries only
// the fields the mutation changed and may be nil for creations.
func (r *HistoryRecorder) Record(ctx context.Context, tx *database.Transaction, snapshot *models.DetailedConsentResource, reason string, deltas map[string]interface{}, timestamp int64) error {
	if snapshot == nil {
		return fmt.Errorf("history snapshot is required")
	}

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal history snapshot: %w", err)
	}

	var deltasJSON models.JSON
	if len(deltas) > 0 {
		raw, err := json.Marshal(deltas)
		if err != nil {
			return fmt.Errorf("failed to marshal history deltas: %w", err)
		}
		deltasJSON = models.JSON(raw)
	}

	if timestamp <= 0 {
		timestamp = utils.GetCurrentTimestamp()
	}

	history := &models.ConsentHistory{
		HistoryID: utils.GenerateHistoryID(),
		ConsentID: snapshot.ConsentID,
		Timestamp: timestamp,
		Reason:    reason,
		Snapshot:  models.JSON(snapshotJSON),
		Deltas:    deltasJSON,
		OrgID:     snapshot.OrgID,
	}

	if err := r.historyDAO.CreateWithTx(ctx, tx, history); err != nil {
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"consent_id": snapshot.ConsentID,
		"history_id": history.HistoryID,
		"reason":     reason,
	}).Debug("Recorded consent history entry")

	return nil
}

// GetHistory retrieves the amendment history of a consent, newest first, with
// snapshots and deltas deserialized.
func (r *HistoryRecorder) GetHistory(ctx context.Context, consentID, orgID string) ([]models.ConsentHistoryResource, error) {
	records, err := r.historyDAO.GetByConsentID(ctx, consentID, orgID)
	if err != nil {
		return nil, err
	}

	resources := make([]models.ConsentHistoryResource, 0, len(records))
	for _, record := range records {
		resource := models.ConsentHistoryResource{
			HistoryID: record.HistoryID,
			ConsentID: record.ConsentID,
			Timestamp: record.Timestamp,
			Reason:    record.Reason,
		}

		if len(record.Snapshot) > 0 {
			var snapshot models.DetailedConsentResource
			if err := json.Unmarshal(record.Snapshot, &snapshot); err != nil {
				return nil, fmt.Errorf("failed to unmarshal history snapshot %s: %w", record.HistoryID, err)
			}
			resource.Snapshot = &snapshot
		}

		if len(record.Deltas) > 0 {
			var deltas map[string]interface{}
			if err := json.Unmarshal(record.Deltas, &deltas); err != nil {
				return nil, fmt.Errorf("failed to unmarshal history deltas %s: %w", record.HistoryID, err)
			}
			resource.Deltas = deltas
		}

		resources = append(resources, resource)
	}

	return resources, nil
}
