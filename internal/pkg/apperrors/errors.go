package apperrors

import "errors"

// Error kinds. Every error returned by a service wraps exactly one of these.
var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidState       = errors.New("invalid state")
	ErrCapacity           = errors.New("capacity reached")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Machine-readable codes carried in the error response body
const (
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeExpiredToken        = "EXPIRED_TOKEN"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeForbidden           = "FORBIDDEN"
	CodeNotConnected        = "NOT_CONNECTED"
	CodeEmailNotVerified    = "EMAIL_NOT_VERIFIED"
	CodeProfileNotCompleted = "PROFILE_NOT_COMPLETED"
	CodeResourceNotFound    = "RESOURCE_NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeAlreadyConnected    = "ALREADY_CONNECTED"
	CodeRequestPending      = "REQUEST_PENDING"
	CodeAlreadyJoined       = "ALREADY_JOINED"
	CodeNotParticipant      = "NOT_PARTICIPANT"
	CodeInvalidState        = "INVALID_STATE"
	CodeWorkshopFull        = "WORKSHOP_FULL"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
)

// Well-known failures that clients branch on by code.
var (
	ErrNotConnected = &CustomError{
		Err:     ErrPermissionDenied,
		Message: "You can only message your connections",
		Code:    CodeNotConnected,
	}
	ErrEmailNotVerified = &CustomError{
		Err:     ErrPermissionDenied,
		Message: "Please verify your email first",
		Code:    CodeEmailNotVerified,
	}
	ErrProfileNotCompleted = &CustomError{
		Err:     ErrPermissionDenied,
		Message: "Please complete your profile first",
		Code:    CodeProfileNotCompleted,
	}
	ErrInvalidCredentials = &CustomError{
		Err:     ErrUnauthenticated,
		Message: "Invalid email or password",
		Code:    CodeInvalidCredentials,
	}
	ErrTokenExpired = &CustomError{
		Err:     ErrUnauthenticated,
		Message: "Token has expired",
		Code:    CodeExpiredToken,
	}
	ErrTokenInvalid = &CustomError{
		Err:     ErrUnauthenticated,
		Message: "Invalid token",
		Code:    CodeInvalidToken,
	}
	ErrEmailAlreadyExists = &CustomError{
		Err:     ErrConflict,
		Message: "Email already registered",
		Code:    CodeConflict,
	}
)

// NewValidationError creates a validation failure with a message
func NewValidationError(message string) *CustomError {
	return &CustomError{Err: ErrValidationFailed, Message: message, Code: CodeValidationFailed}
}

// NewUnauthenticatedError creates an authentication failure with a message
func NewUnauthenticatedError(message string) *CustomError {
	return &CustomError{Err: ErrUnauthenticated, Message: message, Code: CodeUnauthorized}
}

// NewForbiddenError creates a permission failure with a message
func NewForbiddenError(message string) *CustomError {
	return &CustomError{Err: ErrPermissionDenied, Message: message, Code: CodeForbidden}
}

// NewResourceNotFoundError creates a not-found error with a message
func NewResourceNotFoundError(message string) *CustomError {
	return &CustomError{Err: ErrResourceNotFound, Message: message, Code: CodeResourceNotFound}
}

// NewConflictError creates a conflict error with a message
func NewConflictError(message string) *CustomError {
	return &CustomError{Err: ErrConflict, Message: message, Code: CodeConflict}
}

// NewInvalidStateError creates an error for an operation the current state forbids
func NewInvalidStateError(message string) *CustomError {
	return &CustomError{Err: ErrInvalidState, Message: message, Code: CodeInvalidState}
}

// NewCapacityError creates an error for a full resource
func NewCapacityError(message string) *CustomError {
	return &CustomError{Err: ErrCapacity, Message: message, Code: CodeWorkshopFull}
}

// NewServiceUnavailableError creates an error for a disabled or failing dependency
func NewServiceUnavailableError(message string) *CustomError {
	return &CustomError{Err: ErrServiceUnavailable, Message: message, Code: CodeServiceUnavailable}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode overrides the error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// CodeOf returns the machine-readable code of err
func CodeOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Code != "" {
		return ce.Code
	}

	switch {
	case errors.Is(err, ErrValidationFailed):
		return CodeValidationFailed
	case errors.Is(err, ErrUnauthenticated):
		return CodeUnauthorized
	case errors.Is(err, ErrPermissionDenied):
		return CodeForbidden
	case errors.Is(err, ErrResourceNotFound):
		return CodeResourceNotFound
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrInvalidState):
		return CodeInvalidState
	case errors.Is(err, ErrCapacity):
		return CodeWorkshopFull
	case errors.Is(err, ErrServiceUnavailable):
		return CodeServiceUnavailable
	default:
		return CodeInternal
	}
}

// MessageOf returns the client-facing message of err
func MessageOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	return err.Error()
}
