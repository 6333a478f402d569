package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

// ParseIDParam parses a positive int64 path parameter
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("Invalid " + name)
	}
	return id, nil
}

// ParseOptionalInt64Query parses ?name= as int64; ok is false when absent.
// A present but malformed value is a validation error.
func ParseOptionalInt64Query(c *gin.Context, name string) (value int64, ok bool, err error) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return 0, false, nil
	}
	value, err = strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, false, apperrors.NewValidationError("Invalid " + name)
	}
	return value, true, nil
}
