package models

// Audit reasons recorded by the core service
const (
	ReasonCreateConsent    = "Create consent"
	ReasonBindAccounts     = "Bind user accounts to consent"
	ReasonReauthorize      = "Reauthorize consent"
	ReasonRevokeConsent    = "Revoke the consent"
	ReasonAmendConsent     = "Amend consent"
	ReasonStatusUpdate     = "Consent status updated"
	ReasonConsentFile      = "Store consent file"
	ReasonExclusiveRevoke  = "Revoke existing applicable consent"
	ReasonUpdateAttributes = "Update consent attributes"
	ReasonDeleteAttributes = "Delete consent attributes"
)

// ConsentStatusAudit represents the FS_CONSENT_STATUS_AUDIT table
type ConsentStatusAudit struct {
	StatusAuditID  string `db:"STATUS_AUDIT_ID" json:"statusAuditId"`
	ConsentID      string `db:"CONSENT_ID" json:"consentId"`
	CurrentStatus  string `db:"CURRENT_STATUS" json:"currentStatus"`
	ActionTime     int64  `db:"ACTION_TIME" json:"actionTime"`
	Reason         string `db:"REASON" json:"reason"`
	ActionBy       string `db:"ACTION_BY" json:"actionBy"`
	PreviousStatus string `db:"PREVIOUS_STATUS" json:"previousStatus"`
	OrgID          string `db:"ORG_ID" json:"-"`
}

// ConsentHistory represents the FS_CONSENT_HISTORY table. Each row is an
// immutable snapshot of the detailed consent taken inside the transaction of
// the mutation it documents, plus a map of changed-attribute deltas.
type ConsentHistory struct {
	HistoryID string `db:"HISTORY_ID" json:"historyId"`
	ConsentID string `db:"CONSENT_ID" json:"consentId"`
	Timestamp int64  `db:"HISTORY_TIME" json:"timestamp"`
	Reason    string `db:"REASON" json:"reason"`
	Snapshot  JSON   `db:"SNAPSHOT" json:"snapshot"`
	Deltas    JSON   `db:"DELTAS" json:"changedAttributes"`
	OrgID     string `db:"ORG_ID" json:"-"`
}

// ConsentHistoryResource is the deserialized view of a history row returned
// by amendment history reads
type ConsentHistoryResource struct {
	HistoryID string                   `json:"historyId"`
	ConsentID string                   `json:"consentId"`
	Timestamp int64                    `json:"timestamp"`
	Reason    string                   `json:"reason"`
	Snapshot  *DetailedConsentResource `json:"snapshot"`
	Deltas    map[string]interface{}   `json:"changedAttributes"`
}

// AuditSearchParams represents search parameters for status audit queries
type AuditSearchParams struct {
	ConsentIDs []string `form:"consentIds"`
	Status     string   `form:"status"`
	ActionBy   string   `form:"actionBy"`
	FromTime   *int64   `form:"fromTime"`
	ToTime     *int64   `form:"toTime"`
	Limit      int      `form:"limit"`
	Offset     int      `form:"offset"`
	OrgID      string   `form:"-"`
}
