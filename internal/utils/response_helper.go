package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wso2/consent-core-service/internal/models"
)

// SendErrorResponse sends an error JSON response
func SendErrorResponse(c *gin.Context, statusCode int, errCode, message, details string) {
	c.JSON(statusCode, models.ErrorResponse{
		Code:    errCode,
		Message: message,
		Details: details,
	})
}

// SendServiceError maps a service layer error to its HTTP status and sends it
func SendServiceError(c *gin.Context, err error) {
	svcErr := models.AsServiceError(err)
	SendErrorResponse(c, models.HTTPStatusForErrorCode(svcErr.Code), svcErr.Code, svcErr.Message, svcErr.Details)
}

// SendCreatedResponse sends a 201 Created response
func SendCreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SendOKResponse sends a 200 OK response
func SendOKResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendNoContentResponse sends a 204 No Content response
func SendNoContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// SendBadRequestError sends a 400 Bad Request error
func SendBadRequestError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeBadRequest, message, details)
}

// SendValidationError sends a validation error response
func SendValidationError(c *gin.Context, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidationError, "Validation failed", details)
}

// SendConflictError sends a 409 Conflict error
func SendConflictError(c *gin.Context, errCode, message string) {
	SendErrorResponse(c, http.StatusConflict, errCode, message, "")
}

// SendInternalServerError sends a 500 Internal Server Error
func SendInternalServerError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternalError, message, details)
}

// GetOrgIDFromContext extracts organization ID from context
func GetOrgIDFromContext(c *gin.Context) string {
	orgID, exists := c.Get("orgID")
	if !exists {
		return "DEFAULT_ORG"
	}
	return orgID.(string)
}

// GetClientIDFromContext extracts client ID from context
func GetClientIDFromContext(c *gin.Context) string {
	clientID, exists := c.Get("clientID")
	if !exists {
		return ""
	}
	return clientID.(string)
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(c *gin.Context) string {
	userID, exists := c.Get("userID")
	if !exists {
		return ""
	}
	return userID.(string)
}

// SetContextValue sets a value in the Gin context
func SetContextValue(c *gin.Context, key string, value interface{}) {
	c.Set(key, value)
}
