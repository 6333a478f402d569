package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/logger"
)

// StatusFor maps an error kind to its HTTP status
func StatusFor(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrValidationFailed, apperrors.ErrConflict, apperrors.ErrInvalidState, apperrors.ErrCapacity):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HandleAPIError writes err as the standard error body and aborts the request
func HandleAPIError(c *gin.Context, err error) {
	status := StatusFor(err)

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Request failed")
	} else {
		logger.Warn().Err(err).
			Int("status", status).
			Str("path", c.FullPath()).
			Msg("Request rejected")
	}

	message := apperrors.MessageOf(err)
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}

	resp := dto.NewErrorResponse(apperrors.CodeOf(err), message)
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && ce.Details != nil {
		resp.WithDetails(ce.Details)
	}

	c.AbortWithStatusJSON(status, resp)
}

// HandleBindError reports a request body or form that failed to bind
func HandleBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make(map[string]interface{}, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = formatValidationError(fe)
		}
		HandleAPIError(c, apperrors.NewValidationError(formatValidationError(verrs[0])).WithDetails(fields))
		return
	}

	HandleAPIError(c, apperrors.NewValidationError("Invalid request body"))
}

// Recovery turns panics into a 500 error body
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			dto.NewErrorResponse(apperrors.CodeInternal, "Internal server error"))
	})
}
