package utils

import (
	"fmt"
	"strings"
)

// ValidateConsentID validates consent ID format
func ValidateConsentID(consentID string) error {
	if consentID == "" {
		return fmt.Errorf("consent ID cannot be empty")
	}
	if len(consentID) > 255 {
		return fmt.Errorf("consent ID too long (max 255 characters)")
	}
	return nil
}

// ValidateClientID validates client ID format
func ValidateClientID(clientID string) error {
	if clientID == "" {
		return fmt.Errorf("client ID cannot be empty")
	}
	if len(clientID) > 255 {
		return fmt.Errorf("client ID too long (max 255 characters)")
	}
	return nil
}

// ValidateOrgID validates organization ID
func ValidateOrgID(orgID string) error {
	if orgID == "" {
		return fmt.Errorf("organization ID cannot be empty")
	}
	if len(orgID) > 255 {
		return fmt.Errorf("organization ID too long (max 255 characters)")
	}
	return nil
}

// ValidateConsentType validates consent type
func ValidateConsentType(consentType string) error {
	if consentType == "" {
		return fmt.Errorf("consent type cannot be empty")
	}
	if len(consentType) > 64 {
		return fmt.Errorf("consent type too long (max 64 characters)")
	}
	return nil
}

// ValidateRequired validates that a field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateMaxLength validates maximum string length
func ValidateMaxLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%s exceeds maximum length of %d characters", fieldName, maxLength)
	}
	return nil
}

// SanitizeString removes dangerous characters from user input
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")
	// Trim whitespace
	input = strings.TrimSpace(input)
	return input
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // Default limit
	}
	if limit > 100 {
		return 100 // Max limit
	}
	return limit
}

// ValidateOffset validates pagination offset
func ValidateOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
