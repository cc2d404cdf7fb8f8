package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes for the failure taxonomy surfaced to callers.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidState        = "INVALID_STATE"
	CodeValidation          = "VALIDATION_ERROR"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
)

// NewNotFoundError creates a NOT_FOUND error with a specific message
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// NewInvalidStateError creates an INVALID_STATE error with a specific message
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError(CodeInvalidState, message)
}

// NewValidationError creates a VALIDATION_ERROR with a specific message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

func hasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsNotFound returns true if the error carries the NOT_FOUND code
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsInvalidState returns true if the error carries the INVALID_STATE code
func IsInvalidState(err error) bool {
	return hasCode(err, CodeInvalidState)
}

// IsValidation returns true if the error carries the VALIDATION_ERROR code
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsConcurrencyConflict returns true if the error carries the CONCURRENCY_CONFLICT code
func IsConcurrencyConflict(err error) bool {
	return hasCode(err, CodeConcurrencyConflict)
}
