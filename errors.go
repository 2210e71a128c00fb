package feez

import (
	"errors"
	"fmt"
)

// OpError represents an orchestration-specific error
type OpError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrCodeInvalidParameters    = "invalid_parameters"
	ErrCodeUnsupportedAction    = "unsupported_action"
	ErrCodeUnsupportedChain     = "unsupported_chain"
	ErrCodePaymasterUnavailable = "paymaster_unavailable"
	ErrCodePaymasterRejected    = "paymaster_rejected"
	ErrCodePersistenceFailure   = "persistence_failure"
)

// NewOpError creates a new orchestration error
func NewOpError(code, message string, details map[string]interface{}) *OpError {
	return &OpError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// ErrorCode extracts the error code from an error chain.
// Returns an empty string if no OpError is found.
func ErrorCode(err error) string {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Code
	}
	return ""
}

// IsClientError reports whether the error is caused by bad caller input
// rather than a downstream failure.
func IsClientError(err error) bool {
	switch ErrorCode(err) {
	case ErrCodeInvalidParameters, ErrCodeUnsupportedAction, ErrCodeUnsupportedChain:
		return true
	}
	return false
}
