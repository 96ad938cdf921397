package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrClientNotFound      = errors.New("client not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrActiveLoanExists    = errors.New("client already has an open loan")
	ErrConflict            = errors.New("concurrent modification conflict")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidInput          = "INVALID_INPUT"
	ErrCodePrincipalBelowMinimum = "PRINCIPAL_BELOW_MINIMUM"
	ErrCodePrincipalAboveMaximum = "PRINCIPAL_ABOVE_MAXIMUM"
	ErrCodeInterestRateTooLow    = "INTEREST_RATE_TOO_LOW"
	ErrCodeTermOutOfRange        = "TERM_OUT_OF_RANGE"
	ErrCodeStartDateInPast       = "START_DATE_IN_PAST"
	ErrCodeDeclarationRequired   = "DECLARATION_REQUIRED"
	ErrCodeClientNotFound        = "CLIENT_NOT_FOUND"
	ErrCodeClientAlreadyExists   = "CLIENT_ALREADY_EXISTS"
	ErrCodeActiveLoanExists      = "ACTIVE_LOAN_EXISTS"
	ErrCodeLoanNotFound          = "LOAN_NOT_FOUND"
	ErrCodeInstallmentNotFound   = "INSTALLMENT_NOT_FOUND"
	ErrCodeConcurrentConflict    = "CONCURRENT_CONFLICT"
	ErrCodeDatabaseError         = "DATABASE_ERROR"
	ErrCodeCacheError            = "CACHE_ERROR"
	ErrCodeRenderError           = "RENDER_ERROR"
)

// Wrap common errors with business context

func WrapInvalidInput(detail string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidInput, detail, ErrInvalidInput)
}

func WrapClientNotFound(clientID string) *BusinessError {
	return NewBusinessError(
		ErrCodeClientNotFound,
		fmt.Sprintf("Client %s not found", clientID),
		ErrClientNotFound,
	)
}

func WrapClientAlreadyExists(dni string) *BusinessError {
	return NewBusinessError(
		ErrCodeClientAlreadyExists,
		fmt.Sprintf("Client with DNI %s is already registered", dni),
		nil,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapInstallmentNotFound(loanID, installmentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("Installment %s does not belong to loan %s", installmentID, loanID),
		ErrInstallmentNotFound,
	)
}

func WrapActiveLoanExists(clientID string) *BusinessError {
	return NewBusinessError(
		ErrCodeActiveLoanExists,
		fmt.Sprintf("Client %s already has an open loan", clientID),
		ErrActiveLoanExists,
	)
}

// WrapConcurrentConflict signals that a transactional boundary detected a
// race, e.g. two concurrent creations for the same client. Retryable.
func WrapConcurrentConflict(detail string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrentConflict,
		detail,
		errors.Join(ErrConflict, err),
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}

func WrapRenderError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeRenderError,
		"document rendering failed",
		err,
	)
}
