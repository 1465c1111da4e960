package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeProcessing   ErrorType = "processing"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeInternal     ErrorType = "internal"

	// Quality engine kinds
	ErrorTypeFeatureCalculation     ErrorType = "feature_calculation"
	ErrorTypeInvalidImage           ErrorType = "invalid_image"
	ErrorTypeInvalidImageSize       ErrorType = "invalid_image_size"
	ErrorTypeModelNotLoaded         ErrorType = "model_not_loaded"
	ErrorTypeModelCorrupt           ErrorType = "model_corrupt"
	ErrorTypeUnrecognizedIdentifier ErrorType = "unrecognized_identifier"
	ErrorTypeInvalidScore           ErrorType = "invalid_score"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	Module     string    `json:"module,omitempty"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	prefix := string(e.Type)
	if e.Module != "" {
		prefix = fmt.Sprintf("%s [%s]", e.Type, e.Module)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithModule returns a copy of the error tagged with the module that raised it.
func (e *AppError) WithModule(module string) *AppError {
	cp := *e
	cp.Module = module
	return &cp
}

func newAppError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, http.StatusBadGateway, message, cause)
}

// NewProcessingError creates a new processing error
func NewProcessingError(message string, cause error) *AppError {
	return newAppError(ErrorTypeProcessing, http.StatusUnprocessableEntity, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return newAppError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, cause)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, cause)
}

// NewFeatureCalculationError reports a failure inside a quality measure module.
func NewFeatureCalculationError(module, message string, cause error) *AppError {
	e := newAppError(ErrorTypeFeatureCalculation, http.StatusUnprocessableEntity, message, cause)
	e.Module = module
	return e
}

// NewInvalidImageError reports a malformed image buffer or header.
func NewInvalidImageError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInvalidImage, http.StatusBadRequest, message, cause)
}

// NewInvalidImageSizeError reports an image outside the accepted dimensions.
func NewInvalidImageSizeError(message string) *AppError {
	return newAppError(ErrorTypeInvalidImageSize, http.StatusUnprocessableEntity, message, nil)
}

// NewModelNotLoadedError reports use of the ensemble before it was loaded.
func NewModelNotLoadedError(message string) *AppError {
	return newAppError(ErrorTypeModelNotLoaded, http.StatusServiceUnavailable, message, nil)
}

// NewModelCorruptError reports a malformed model file or a hash mismatch.
func NewModelCorruptError(message string, cause error) *AppError {
	return newAppError(ErrorTypeModelCorrupt, http.StatusInternalServerError, message, cause)
}

// NewUnrecognizedIdentifierError reports an unknown measure identifier.
func NewUnrecognizedIdentifierError(identifier string) *AppError {
	e := newAppError(ErrorTypeUnrecognizedIdentifier, http.StatusBadRequest, "unrecognized measure identifier", nil)
	e.Details = identifier
	return e
}

// NewInvalidScoreError reports a unified score outside 0..100.
func NewInvalidScoreError(value int) *AppError {
	e := newAppError(ErrorTypeInvalidScore, http.StatusInternalServerError, "unified score out of range", nil)
	e.Details = fmt.Sprintf("%d", value)
	return e
}

// IsType checks if the error, or any error it wraps, is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
