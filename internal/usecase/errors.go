package usecase

import (
	"errors"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

const (
	CodeLeadNotFound  = "LEAD_NOT_FOUND"
	CodeInvalidAmount = "INVALID_AMOUNT"
	CodeInvalidLead   = "INVALID_LEAD"
	CodeDatabaseError = "DATABASE_ERROR"
)

// DomainError is a business-rule failure detected while executing an operation.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// TechnicalError wraps an infrastructure failure (storage, broker).
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var techErr *TechnicalError
	return errors.As(err, &techErr)
}

func repositoryError(op string, err error) error {
	if errors.Is(err, entity.ErrLeadNotFound) {
		return &DomainError{Code: CodeLeadNotFound, Message: op + ": lead not found", Err: err}
	}
	if errors.Is(err, entity.ErrLeadConstraintFail) {
		return &DomainError{Code: CodeInvalidLead, Message: op + ": lead rejected by storage", Err: err}
	}
	return &TechnicalError{Code: CodeDatabaseError, Message: op + " failed", Err: err}
}
