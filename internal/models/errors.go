package models

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeExternal   ErrorType = "external"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeInternal   ErrorType = "internal"
)

type AppError struct {
	Type     ErrorType              `json:"type"`
	Code     string                 `json:"code"`
	Message  string                 `json:"message"`
	Cause    error                  `json:"-"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func (appError *AppError) Error() string {
	if appError.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", appError.Code, appError.Message, appError.Cause)
	}
	return fmt.Sprintf("%s: %s", appError.Code, appError.Message)
}

func (appError *AppError) Unwrap() error {
	return appError.Cause
}

func (appError *AppError) WithCause(cause error) *AppError {
	appError.Cause = cause
	return appError
}

func (appError *AppError) WithMetadata(key string, value interface{}) *AppError {
	if appError.Metadata == nil {
		appError.Metadata = make(map[string]interface{})
	}
	appError.Metadata[key] = value
	return appError
}

func NewValidationError(code string, message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Code: code, Message: message}
}

func NewExternalError(code string, message string) *AppError {
	return &AppError{Type: ErrorTypeExternal, Code: code, Message: message}
}

func NewTimeoutError(code string, message string) *AppError {
	return &AppError{Type: ErrorTypeTimeout, Code: code, Message: message}
}

func NewInternalError(code string, message string) *AppError {
	return &AppError{Type: ErrorTypeInternal, Code: code, Message: message}
}

// WrapExternalError tags a provider failure with a stable code derived from
// the provider name, keeping the original error in the chain.
func WrapExternalError(provider string, cause error) *AppError {
	return NewExternalError(provider+"_ERROR", fmt.Sprintf("%s call failed", provider)).WithCause(cause)
}

// IsValidationError reports whether err carries the validation type anywhere
// in its chain.
func IsValidationError(err error) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == ErrorTypeValidation
	}
	return false
}
