package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Error codes carried in APIError.ErrorCode
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeParseFailed           = "PARSE_FAILED"
	CodeNotFound              = "NOT_FOUND"
	CodeSessionNotFound       = "SESSION_NOT_FOUND"
	CodeDuplicateColumn       = "DUPLICATE_COLUMN"
	CodeInsufficientData      = "INSUFFICIENT_DATA"
	CodeMissingVolcanoColumns = "MISSING_VOLCANO_COLUMNS"
	CodeNoPlottableData       = "NO_PLOTTABLE_DATA"
	CodePayloadTooLarge       = "PAYLOAD_TOO_LARGE"
	CodeRateLimitExceeded     = "RATE_LIMIT_EXCEEDED"
	CodeInternal              = "INTERNAL_SERVER_ERROR"
	CodeServiceUnavailable    = "SERVICE_UNAVAILABLE"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents one invalid field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios
var (
	// 400 Bad Request
	ErrInvalidRequest   = New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")

	// 404 Not Found
	ErrNotFound        = New(http.StatusNotFound, CodeNotFound, "Resource not found")
	ErrSessionNotFound = New(http.StatusNotFound, CodeSessionNotFound, "Session not found or expired")

	// 413 Payload Too Large
	ErrPayloadTooLarge = New(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "Upload exceeds the maximum allowed size")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimitExceeded, "Rate limit exceeded")

	// 500 Internal Server Error
	ErrInternalServer = New(http.StatusInternalServerError, CodeInternal, "Internal server error")

	// 503 Service Unavailable
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, CodeServiceUnavailable, "Service temporarily unavailable")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		"Request validation failed",
		ValidationErrors{Errors: errs},
	)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// ParseFailed reports an upload that could not be read as a table.
func ParseFailed(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeParseFailed, "Error processing file", err.Error())
}

// DuplicateColumn reports a rename that would produce duplicate names.
func DuplicateColumn(err error) *APIError {
	return NewWithDetails(http.StatusConflict, CodeDuplicateColumn, "Renaming would produce duplicate column names", err.Error())
}

// InsufficientData reports a PCA request the data cannot support.
func InsufficientData(err error) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, CodeInsufficientData, "Not enough data for PCA (need at least 2 rows and 2 numeric columns)", err.Error())
}

// MissingVolcanoColumns reports a volcano request without its columns.
func MissingVolcanoColumns(err error) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, CodeMissingVolcanoColumns, "Volcano plot requires columns 'log2FoldChange' and 'p-value'", err.Error())
}

// NoPlottableData reports a plot whose inputs hold no usable values.
func NoPlottableData(err error) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, CodeNoPlottableData, "Nothing to plot", err.Error())
}

// NotFoundError creates a not found error with details
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource), resource)
}

// PanicRecovery represents panic recovery information
type PanicRecovery struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// ErrPanic creates a panic recovery error
func ErrPanic(rec interface{}) *APIError {
	return NewWithDetails(
		http.StatusInternalServerError,
		CodeInternal,
		"Internal server error",
		PanicRecovery{Message: fmt.Sprintf("%v", rec)},
	)
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}

// WriteError writes an error response without a request context, for code
// running outside the router such as the rate limiter.
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	_ = json.NewEncoder(w).Encode(NewErrorResponse(err))
}
