// Package errors defines the domain error taxonomy shared by services and handlers.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies a DomainError and decides the HTTP status it is reported with.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindConflict
	KindInsufficientStock
	KindRefundExceedsOriginal
	KindUnauthorized
	KindForbidden
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindRefundExceedsOriginal:
		return "refund_exceeds_original"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	// Fields holds per-field validation messages for KindInvalidInput.
	Fields map[string]string
	Err    error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is matches on Code so a sentinel compares equal to copies carrying extra detail.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of e with a more specific message.
func (e *DomainError) WithMessage(format string, args ...any) *DomainError {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

func New(kind Kind, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

func InvalidInput(message string) *DomainError {
	return &DomainError{Kind: KindInvalidInput, Code: "INVALID_INPUT", Message: message}
}

// Validation reports a set of field errors collected before any write.
func Validation(fields map[string]string) *DomainError {
	return &DomainError{Kind: KindInvalidInput, Code: "VALIDATION_FAILED", Message: "validation failed", Fields: fields}
}

func NotFound(entity string) *DomainError {
	return &DomainError{Kind: KindNotFound, Code: "NOT_FOUND", Message: entity + " not found"}
}

func Conflict(code, message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: code, Message: message}
}

// Internal wraps an unexpected failure. The wrapped error is logged, never shown to callers.
func Internal(err error) *DomainError {
	if err == nil {
		return nil
	}
	var de *DomainError
	if stderrors.As(err, &de) {
		return de
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return &DomainError{Kind: KindTimeout, Code: "TIMEOUT", Message: "request timed out", Err: err}
	}
	return &DomainError{Kind: KindInternal, Code: "INTERNAL", Message: "internal server error", Err: err}
}

var (
	ErrUnauthorized = &DomainError{Kind: KindUnauthorized, Code: "UNAUTHORIZED", Message: "unauthorized"}
	ErrForbidden    = &DomainError{Kind: KindForbidden, Code: "FORBIDDEN", Message: "insufficient permissions"}
	ErrTimeout      = &DomainError{Kind: KindTimeout, Code: "TIMEOUT", Message: "request timed out"}
)

// From classifies any error as a DomainError.
func From(err error) *DomainError {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de
	}
	return Internal(err)
}

// HTTPStatus maps an error to the status code it is reported with.
func HTTPStatus(err error) int {
	switch From(err).Kind {
	case KindInvalidInput, KindInsufficientStock, KindRefundExceedsOriginal:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
