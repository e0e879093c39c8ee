package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/task-rest-api/internal/constants"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeValidationError = "VALIDATION_ERROR"

	// Resource errors
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"

	// Throttling
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Client-facing messages
const (
	MsgNotAuthenticated   = "Not authenticated"
	MsgIncorrectLogin     = "Incorrect username or password"
	MsgEmailTaken         = "The user with this username already exists in the system."
	MsgTaskNotFound       = "Task not found"
	MsgInternalError      = "Internal server error"
	MsgTooManyLogins      = "Too many login attempts"
	MsgInvalidRequestBody = "Invalid request body"
)

// FieldError describes one invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError represents a standardized API error response
type APIError struct {
	Code   string       `json:"code"`
	Detail string       `json:"detail"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Detail
}

// NewAPIError creates a new APIError
func NewAPIError(code, detail string) *APIError {
	return &APIError{
		Code:   code,
		Detail: detail,
	}
}

// RespondWithError aborts the request with an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.AbortWithStatusJSON(statusCode, err)
}

// Unauthorized sends a 401 response. The message is always the same so a
// client cannot tell a missing header from a bad or expired token.
func Unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", constants.BearerScheme)
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, MsgNotAuthenticated))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, code, message string) {
	if code == "" {
		code = ErrCodeInvalidInput
	}
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(code, message))
}

// Validation sends a 422 response describing which fields were rejected
func Validation(c *gin.Context, err error) {
	apiErr := NewAPIError(ErrCodeValidationError, "Validation error")

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			apiErr.Errors = append(apiErr.Errors, FieldError{
				Field:   strings.ToLower(fe.Field()),
				Message: validationMessage(fe),
			})
		}
	} else {
		apiErr.Detail = MsgInvalidRequestBody
	}

	RespondWithError(c, http.StatusUnprocessableEntity, apiErr)
}

// ValidationField sends a 422 response for a single field
func ValidationField(c *gin.Context, field, message string) {
	apiErr := NewAPIError(ErrCodeValidationError, "Validation error")
	apiErr.Errors = []FieldError{{Field: field, Message: message}}
	RespondWithError(c, http.StatusUnprocessableEntity, apiErr)
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context, message string) {
	RespondWithError(c, http.StatusTooManyRequests, NewAPIError(ErrCodeTooManyRequests, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, MsgInternalError))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, message))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "max":
		return "value is too long (max " + fe.Param() + ")"
	case "min":
		return "value is too small (min " + fe.Param() + ")"
	default:
		return "invalid value"
	}
}
