package usecase

import (
	"errors"
	"strings"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindDuplicate
	KindNotFound
	KindInvalidTransition
	KindInvalidStatus
	KindReferenceInactive
	KindInvalidCredentials
	KindAccountDisabled
	KindUnauthorized
	KindForbidden
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindNotFound:
		return "not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindInvalidStatus:
		return "invalid_status"
	case KindReferenceInactive:
		return "reference_inactive"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindAccountDisabled:
		return "account_disabled"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	}
	return "unknown"
}

// DomainError é uma falha esperada de regra de negócio; o handler decide o status HTTP pelo Kind.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  []ValidationError
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind facilita os testes e os handlers.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := AsDomainError(err)
	return ok && de.Kind == kind
}

func newDomainError(kind ErrorKind, code, message string, cause error) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message, Err: cause}
}

func validationFailed(fields []ValidationError) *DomainError {
	var sb strings.Builder
	sb.WriteString("validation failed: ")
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Field + " (" + f.Message + ")")
	}
	return &DomainError{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: sb.String(),
		Fields:  fields,
	}
}

// TechnicalError embrulha falhas inesperadas (banco fora, etc). Nunca vai pro cliente.
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
	var te *TechnicalError
	return errors.As(err, &te)
}

func technical(code, message string, err error) error {
	return &TechnicalError{Code: code, Message: message, Err: err}
}
