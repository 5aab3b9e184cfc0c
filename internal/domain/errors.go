package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCompanyNotFound     = errors.New("Company not found")
	ErrHoldingNotFound     = errors.New("Holding not found")
	ErrCertificateNotFound = errors.New("Certificate not found")
)

// ValidationError reports a missing or invalid field. State is never modified when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UnavailableModuleError is returned for every ledger operation on a company whose type has no register.
type UnavailableModuleError struct {
	CompanyType CompanyType
}

func (e *UnavailableModuleError) Error() string {
	return fmt.Sprintf("The Shares & Members module is not available for %s entities", e.CompanyType)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
