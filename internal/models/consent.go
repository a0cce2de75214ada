package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Consent represents the FS_CONSENT table
type Consent struct {
	ConsentID          string `db:"CONSENT_ID" json:"consentId"`
	Receipt            JSON   `db:"RECEIPT" json:"receipt"`
	CreatedTime        int64  `db:"CREATED_TIME" json:"createdTimestamp"`
	UpdatedTime        int64  `db:"UPDATED_TIME" json:"updatedTimestamp"`
	ClientID           string `db:"CLIENT_ID" json:"clientId"`
	ConsentType        string `db:"CONSENT_TYPE" json:"consentType"`
	CurrentStatus      string `db:"CURRENT_STATUS" json:"currentStatus"`
	ConsentFrequency   int    `db:"CONSENT_FREQUENCY" json:"consentFrequency"`
	ValidityPeriod     int64  `db:"VALIDITY_TIME" json:"validityPeriod"`
	RecurringIndicator bool   `db:"RECURRING_INDICATOR" json:"recurringIndicator"`
	OrgID              string `db:"ORG_ID" json:"orgId"`
}

// JSON type for handling JSON fields in MySQL
type JSON json.RawMessage

// Scan implements the sql.Scanner interface for JSON
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSON: %T", value)
	}

	// Validate that it's valid JSON by attempting to unmarshal and remarshal
	var temp interface{}
	if err := json.Unmarshal(bytes, &temp); err != nil {
		return fmt.Errorf("invalid JSON data: %w", err)
	}

	cleanBytes, err := json.Marshal(temp)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	*j = JSON(cleanBytes)
	return nil
}

// Value implements the driver.Valuer interface for JSON
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

// MarshalJSON implements json.Marshaler
func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = JSON(data)
	return nil
}

// DetailedConsentResource is the read-model aggregate of a consent with its
// attributes, authorization resources and account mappings. It is composed on
// demand and never persisted as its own row set.
type DetailedConsentResource struct {
	ConsentID               string            `json:"consentId"`
	ClientID                string            `json:"clientId"`
	Receipt                 JSON              `json:"receipt"`
	ConsentType             string            `json:"consentType"`
	CurrentStatus           string            `json:"currentStatus"`
	ConsentFrequency        int               `json:"consentFrequency"`
	ValidityPeriod          int64             `json:"validityPeriod"`
	CreatedTime             int64             `json:"createdTimestamp"`
	UpdatedTime             int64             `json:"updatedTimestamp"`
	RecurringIndicator      bool              `json:"recurringIndicator"`
	OrgID                   string            `json:"orgId"`
	ConsentAttributes       map[string]string `json:"consentAttributes"`
	AuthorizationResources  []AuthResource    `json:"authorizationResources"`
	ConsentMappingResources []ConsentMapping  `json:"consentMappingResources"`
}

// Clone returns a deep copy of the detailed consent. The attribute map and the
// authorization/mapping slices are duplicated so that mutating the clone never
// affects the source.
func (d *DetailedConsentResource) Clone() *DetailedConsentResource {
	if d == nil {
		return nil
	}

	clone := *d

	if d.Receipt != nil {
		clone.Receipt = make(JSON, len(d.Receipt))
		copy(clone.Receipt, d.Receipt)
	}

	if d.ConsentAttributes != nil {
		clone.ConsentAttributes = make(map[string]string, len(d.ConsentAttributes))
		for k, v := range d.ConsentAttributes {
			clone.ConsentAttributes[k] = v
		}
	}

	if d.AuthorizationResources != nil {
		clone.AuthorizationResources = make([]AuthResource, len(d.AuthorizationResources))
		copy(clone.AuthorizationResources, d.AuthorizationResources)
	}

	if d.ConsentMappingResources != nil {
		clone.ConsentMappingResources = make([]ConsentMapping, len(d.ConsentMappingResources))
		copy(clone.ConsentMappingResources, d.ConsentMappingResources)
	}

	return &clone
}

// ConsentResource returns the root consent row of the detailed view
func (d *DetailedConsentResource) ConsentResource() *Consent {
	return &Consent{
		ConsentID:          d.ConsentID,
		Receipt:            d.Receipt,
		CreatedTime:        d.CreatedTime,
		UpdatedTime:        d.UpdatedTime,
		ClientID:           d.ClientID,
		ConsentType:        d.ConsentType,
		CurrentStatus:      d.CurrentStatus,
		ConsentFrequency:   d.ConsentFrequency,
		ValidityPeriod:     d.ValidityPeriod,
		RecurringIndicator: d.RecurringIndicator,
		OrgID:              d.OrgID,
	}
}

// ActiveMappings returns only the mapping resources that are live grants
func (d *DetailedConsentResource) ActiveMappings() []ConsentMapping {
	active := make([]ConsentMapping, 0, len(d.ConsentMappingResources))
	for _, m := range d.ConsentMappingResources {
		if m.MappingStatus == MappingStatusActive {
			active = append(active, m)
		}
	}
	return active
}

// HasAuthorizedUser checks whether the given user ID matches any authorization
// resource bound to the consent
func (d *DetailedConsentResource) HasAuthorizedUser(userID string) bool {
	for _, auth := range d.AuthorizationResources {
		if auth.UserID == userID {
			return true
		}
	}
	return false
}

// ConsentCreateRequest represents the request payload for creating a consent
type ConsentCreateRequest struct {
	Receipt            JSON              `json:"receipt" binding:"required"`
	ConsentType        string            `json:"consentType" binding:"required"`
	CurrentStatus      string            `json:"currentStatus" binding:"required"`
	ConsentFrequency   int               `json:"consentFrequency,omitempty"`
	ValidityPeriod     int64             `json:"validityPeriod,omitempty"`
	RecurringIndicator bool              `json:"recurringIndicator,omitempty"`
	Attributes         map[string]string `json:"attributes,omitempty"`
	ImplicitAuth       bool              `json:"implicitAuth,omitempty"`
	AuthStatus         string            `json:"authStatus,omitempty"`
	AuthType           string            `json:"authType,omitempty"`
	UserID             string            `json:"userId,omitempty"`
}

// ExclusiveConsentCreateRequest represents the request payload for creating an
// exclusive consent. Prior consents of the same client/type/user in the
// applicable status are transitioned to the new status before insertion.
type ExclusiveConsentCreateRequest struct {
	ConsentCreateRequest
	ApplicableExistingStatus string `json:"applicableExistingStatus" binding:"required"`
	NewExistingStatus        string `json:"newExistingStatus" binding:"required"`
}

// BindUserAccountsRequest represents the request payload for binding accounts
// to an authorization resource
type BindUserAccountsRequest struct {
	AuthID               string            `json:"authId" binding:"required"`
	UserID               string            `json:"userId" binding:"required"`
	AccountPermissionMap map[string]string `json:"accountPermissions" binding:"required"`
	NewAuthStatus        string            `json:"newAuthStatus" binding:"required"`
	NewConsentStatus     string            `json:"newConsentStatus" binding:"required"`
}

// ReauthorizeConsentRequest represents the request payload for reauthorizing
// an existing consent
type ReauthorizeConsentRequest struct {
	AuthID               string            `json:"authId" binding:"required"`
	UserID               string            `json:"userId" binding:"required"`
	AccountPermissionMap map[string]string `json:"accountPermissions" binding:"required"`
	CurrentConsentStatus string            `json:"currentConsentStatus" binding:"required"`
	NewConsentStatus     string            `json:"newConsentStatus" binding:"required"`
}

// ConsentAmendRequest represents the request payload for amending a consent
type ConsentAmendRequest struct {
	Receipt              JSON              `json:"receipt,omitempty"`
	ValidityPeriod       int64             `json:"validityPeriod,omitempty"`
	NewConsentStatus     string            `json:"newConsentStatus,omitempty"`
	AuthID               string            `json:"authId" binding:"required"`
	UserID               string            `json:"userId" binding:"required"`
	AccountPermissionMap map[string]string `json:"accountPermissions,omitempty"`
	Attributes           map[string]string `json:"attributes,omitempty"`
	AmendmentReason      string            `json:"amendmentReason" binding:"required"`
	AmendedTimestamp     int64             `json:"amendedTimestamp" binding:"required"`
}

// ConsentRevokeRequest represents the request payload for revoking a consent
type ConsentRevokeRequest struct {
	NewConsentStatus   string   `json:"newConsentStatus,omitempty"`
	UserID             string   `json:"userId" binding:"required"`
	Reason             string   `json:"reason,omitempty"`
	ApplicableStatuses []string `json:"applicableStatuses,omitempty"`
}

// ConsentSearchParams represents search parameters for consent queries
type ConsentSearchParams struct {
	ConsentIDs      []string `form:"consentIds"`
	ClientIDs       []string `form:"clientIds"`
	ConsentTypes    []string `form:"consentTypes"`
	ConsentStatuses []string `form:"consentStatuses"`
	UserIDs         []string `form:"userIds"`
	AttributeKey    string   `form:"attributeKey"`
	AttributeValue  string   `form:"attributeValue"`
	FromTime        *int64   `form:"fromTime"`
	ToTime          *int64   `form:"toTime"`
	Limit           int      `form:"limit"`
	Offset          int      `form:"offset"`
	OrgID           string   `form:"-"` // Extracted from header
}

// ConsentSearchResponse represents the response for consent search
type ConsentSearchResponse struct {
	Data     []DetailedConsentResource `json:"data"`
	Metadata ConsentSearchMetadata     `json:"metadata"`
}

// ConsentSearchMetadata represents pagination metadata
type ConsentSearchMetadata struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
