package models

// Extension point identifiers. Each names a hook invoked by the core service
// before finalizing a state transition.
const (
	ExtensionPointPreConsentAuthorization = "pre-consent-authorization"
	ExtensionPointConsentValidation       = "consent-validation"
	ExtensionPointConsentPersistence      = "consent-persistence"
	ExtensionPointConsentManage           = "consent-manage"
	ExtensionPointConsentManageDelete     = "consent-manage-delete"
)

// External service statuses
const (
	ExternalStatusSuccess = "SUCCESS"
	ExternalStatusError   = "ERROR"
)

// ExternalServiceRequest is the generic envelope sent to the external
// validation transport
type ExternalServiceRequest struct {
	RequestID string `json:"requestId"`
	Payload   JSON   `json:"payload"`
}

// ExternalServiceResponse is the generic envelope returned by the external
// validation transport
type ExternalServiceResponse struct {
	Status       string `json:"status"`
	Data         JSON   `json:"data,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// IsSuccess reports whether the external call was accepted
func (r *ExternalServiceResponse) IsSuccess() bool {
	return r != nil && r.Status == ExternalStatusSuccess
}

// ExtensionEventPayload is the payload forwarded to the lifecycle extension
// points (pre-consent-authorization, consent-persistence, consent-manage,
// consent-manage-delete)
type ExtensionEventPayload struct {
	ConsentID string                   `json:"consentId"`
	OrgID     string                   `json:"orgId"`
	Request   interface{}              `json:"request,omitempty"`
	Consent   *DetailedConsentResource `json:"consent,omitempty"`
}

// ConsentValidateRequest is the input to the consent validator extension
// point. Identity fields arrive already authenticated from the caller-facing
// surface; the validator re-checks ownership only.
type ConsentValidateRequest struct {
	ConsentID       string                   `json:"consentId"`
	UserID          string                   `json:"userId"`
	ClientID        string                   `json:"clientId"`
	ElectedResource string                   `json:"electedResource,omitempty"`
	Headers         map[string]string        `json:"headers,omitempty"`
	Payload         map[string]interface{}   `json:"payload,omitempty"`
	Consent         *DetailedConsentResource `json:"consent,omitempty"`
}

// ConsentValidateResult is the outcome of the consent validator extension point
type ConsentValidateResult struct {
	IsValid            bool                   `json:"isValid"`
	ErrorCode          string                 `json:"errorCode,omitempty"`
	ErrorMessage       string                 `json:"errorMessage,omitempty"`
	HTTPCode           int                    `json:"httpCode,omitempty"`
	ModifiedPayload    interface{}            `json:"modifiedPayload,omitempty"`
	ConsentInformation map[string]interface{} `json:"consentInformation,omitempty"`
}

// IdempotencyValidationResult is the outcome of an idempotency check. Exactly
// one of three shapes is produced: fresh (IsIdempotent=false), idempotent and
// valid (both true, Consent set), or idempotent but invalid (conflicting
// retry).
type IdempotencyValidationResult struct {
	IsIdempotent bool                     `json:"isIdempotent"`
	IsValid      bool                     `json:"isValid"`
	ConsentID    string                   `json:"consentId,omitempty"`
	Consent      *DetailedConsentResource `json:"consent,omitempty"`
}
