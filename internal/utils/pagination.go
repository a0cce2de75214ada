package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wso2/consent-core-service/pkg/utils"
)

// ParseLimit reads and bounds the limit query parameter
func ParseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		limit = 20
	}
	return utils.ValidateLimit(limit)
}

// ParseOffset reads and bounds the offset query parameter
func ParseOffset(c *gin.Context) int {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		offset = 0
	}
	return utils.ValidateOffset(offset)
}

// ParseInt64Query reads an optional int64 query parameter
func ParseInt64Query(c *gin.Context, name string) *int64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &value
}
