package models

// Authorization statuses
const (
	AuthStatusCreated  = "Created"
	AuthStatusApproved = "Approved"
	AuthStatusRejected = "Rejected"
)

// Authorization types
const (
	AuthTypePrimary    = "primary"
	AuthTypeAdditional = "additional"
	AuthTypeCorrection = "correction"
)

// AuthResource represents the FS_CONSENT_AUTH_RESOURCE table
type AuthResource struct {
	AuthID      string `db:"AUTH_ID" json:"authorizationId"`
	ConsentID   string `db:"CONSENT_ID" json:"consentId"`
	AuthType    string `db:"AUTH_TYPE" json:"authorizationType"`
	UserID      string `db:"USER_ID" json:"userId"`
	AuthStatus  string `db:"AUTH_STATUS" json:"authorizationStatus"`
	UpdatedTime int64  `db:"UPDATED_TIME" json:"updatedTime"`
	OrgID       string `db:"ORG_ID" json:"-"`
}
