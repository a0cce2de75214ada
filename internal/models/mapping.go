package models

// Mapping statuses. Modelled as tagged states rather than a boolean so further
// statuses (e.g. suspended) can be added without a schema change.
const (
	MappingStatusActive   = "active"
	MappingStatusInactive = "inactive"
)

// ConsentMapping represents the FS_CONSENT_MAPPING table. One row per
// account/permission binding produced under an authorization resource. Rows
// are never deleted; revocation and amendment flip the status to inactive.
type ConsentMapping struct {
	MappingID     string `db:"MAPPING_ID" json:"mappingId"`
	AuthID        string `db:"AUTH_ID" json:"authorizationId"`
	AccountID     string `db:"ACCOUNT_ID" json:"accountId"`
	Permission    string `db:"PERMISSION" json:"permission"`
	MappingStatus string `db:"MAPPING_STATUS" json:"mappingStatus"`
	OrgID         string `db:"ORG_ID" json:"-"`
}
