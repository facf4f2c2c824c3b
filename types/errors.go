package types

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a ledger failure. Every caller-visible failure is one
// of these kinds; the core never retries internally.
type ErrorCode string

const (
	CodeForbidden        ErrorCode = "forbidden"
	CodeNotFound         ErrorCode = "not_found"
	CodeInvalidPayload   ErrorCode = "invalid_payload"
	CodeConflict         ErrorCode = "conflict"
	CodeStoreUnavailable ErrorCode = "store_unavailable"
	CodeStoreCorrupt     ErrorCode = "store_corrupt"
)

// Error provides structured error information for ledger operations.
type Error struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same code, so callers can compare
// against the sentinel values below with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrForbidden        = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInvalidPayload   = &Error{Code: CodeInvalidPayload, Message: "invalid payload"}
	ErrConflict         = &Error{Code: CodeConflict, Message: "conflict"}
	ErrStoreUnavailable = &Error{Code: CodeStoreUnavailable, Message: "store unavailable"}
	ErrStoreCorrupt     = &Error{Code: CodeStoreCorrupt, Message: "store corrupt"}
)

// NewError creates a structured ledger error.
func NewError(code ErrorCode, message string, details map[string]interface{}) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

// Forbidden reports an access-policy denial.
func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// NotFound reports an absent task or subtask.
func NotFound(resource, id string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %q not found", resource, id),
		Details: map[string]interface{}{"resource": resource, "id": id},
	}
}

// InvalidPayload reports malformed reconciliation input or mutation body.
func InvalidPayload(message string, cause error) *Error {
	return &Error{Code: CodeInvalidPayload, Message: message, cause: cause}
}

// Conflict reports a policy-level invariant violation, e.g. removing the
// last surviving admin.
func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// StoreUnavailable reports that the persistence medium could not be read or
// written.
func StoreUnavailable(message string, cause error) *Error {
	return &Error{Code: CodeStoreUnavailable, Message: message, cause: cause}
}

// StoreCorrupt reports that loaded content did not parse into the expected
// shape or failed its integrity check.
func StoreCorrupt(message string, cause error) *Error {
	return &Error{Code: CodeStoreCorrupt, Message: message, cause: cause}
}

// IsForbidden reports whether err is an access-policy denial.
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

// IsNotFound reports whether err is a missing task/subtask/user.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidPayload reports whether err is a malformed-input failure.
func IsInvalidPayload(err error) bool { return errors.Is(err, ErrInvalidPayload) }

// IsConflict reports whether err is an invariant-violation refusal.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
