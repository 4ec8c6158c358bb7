package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConfigMissing = "CONFIG_MISSING"
	ErrCodeStorageFault  = "STORAGE_FAULT"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyCustomerRef = NewDomainError(ErrCodeValidation, "customer reference must be a non-empty string")
	ErrEmptyQuoteLines  = NewDomainError(ErrCodeValidation, "quote must contain at least one line")
)

// Not found errors
var (
	ErrProductNotFound = NewDomainError(ErrCodeNotFound, "product not found")
	ErrQuoteNotFound   = NewDomainError(ErrCodeNotFound, "quote not found")
)

// Configuration errors
var (
	ErrPricingPolicyMissing = NewDomainError(ErrCodeConfigMissing, "pricing policy not configured")
)

// NewInvalidLineError reports a quote line rejected by validation, identified
// by its 1-based position in the request.
func NewInvalidLineError(lineNumber int, reason string) *DomainError {
	return NewDomainError(ErrCodeValidation, fmt.Sprintf("line %d: %s", lineNumber, reason))
}

// NewUnknownSKUError reports a quote line referencing a SKU that does not
// exist in the catalog.
func NewUnknownSKUError(lineNumber int, sku string) *DomainError {
	return NewDomainError(ErrCodeValidation, fmt.Sprintf("line %d: unknown SKU %q", lineNumber, sku))
}

// NewStorageFault wraps a transient storage failure. The quote write path is
// atomic, so callers may safely retry the whole operation.
func NewStorageFault(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeStorageFault, message, err)
}
