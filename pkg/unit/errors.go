package unit

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a failure class in the envelope returned to callers.
type ErrorCode string

const (
	// ErrCodeAuthRequired marks operations that need a credential when
	// none (or an obvious placeholder) was configured.
	ErrCodeAuthRequired ErrorCode = "AUTH_REQUIRED"
	// ErrCodeNetwork marks connection-level failures talking to the
	// upstream provider.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"
	// ErrCodeUpstream marks non-success responses from the provider.
	ErrCodeUpstream ErrorCode = "UPSTREAM_ERROR"
	// ErrCodeInvalidInput marks schema-validation failures and references
	// to unknown model identifiers.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Error is the structured failure every unit and the provider client
// surface. Details carries machine-readable context (status codes,
// offending fields, remediation hints).
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func NewErrorWithDetails(code ErrorCode, message string, details any) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

// AsError unwraps err into a *Error if one is anywhere in the chain.
func AsError(err error) (*Error, bool) {
	var ue *Error
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// Errorf builds an INVALID_INPUT error from a format string. Most unit
// input plumbing funnels through this.
func Errorf(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}
