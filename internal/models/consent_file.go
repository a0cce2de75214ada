package models

// ConsentFile represents the FS_CONSENT_FILE table. At most one opaque file
// payload is stored per consent, uploaded while the consent awaits
// authorization.
type ConsentFile struct {
	ConsentID   string `db:"CONSENT_ID" json:"consentId"`
	ConsentFile string `db:"CONSENT_FILE" json:"consentFile"`
	OrgID       string `db:"ORG_ID" json:"-"`
}

// ConsentFileUploadRequest represents the request payload for uploading a
// consent file
type ConsentFileUploadRequest struct {
	FileContent      string `json:"fileContent" binding:"required"`
	NewConsentStatus string `json:"newConsentStatus" binding:"required"`
	ApplicableStatus string `json:"applicableStatus" binding:"required"`
	UserID           string `json:"userId,omitempty"`
}
