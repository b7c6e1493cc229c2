package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes used across the gateway.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeRoleNotPermitted   = "ROLE_NOT_PERMITTED"
	CodeSessionExpired     = "SESSION_EXPIRED"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeIllegalTransition  = "ILLEGAL_TRANSITION"
	CodeInvalidPayload     = "INVALID_PAYLOAD"
	CodeRemoteRejected     = "REMOTE_REJECTED"
	CodeNetworkFailure     = "NETWORK_FAILURE"
	CodeInternal           = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "invalid email or password", http.StatusUnauthorized, nil)
}

func NewRoleNotPermitted(role string) error {
	return NewDomainError(CodeRoleNotPermitted, "account role is not permitted in the back office", http.StatusForbidden,
		map[string]any{"role": role})
}

func NewSessionExpired(err error) error {
	return &DomainError{
		Code:       CodeSessionExpired,
		Message:    "session expired; authenticate again",
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

func NewUnauthenticated(message string) error {
	return NewDomainError(CodeUnauthenticated, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewIllegalTransition(from, to string) error {
	return NewDomainError(CodeIllegalTransition, fmt.Sprintf("order cannot move from %s to %s", from, to),
		http.StatusConflict, map[string]any{"from": from, "to": to})
}

func NewInvalidPayload(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidPayload, message, http.StatusBadRequest, details)
}

// NewRemoteRejected carries the server's own rejection message verbatim.
func NewRemoteRejected(message string, status int) error {
	if message == "" {
		message = "remote API rejected the request"
	}
	if status < http.StatusBadRequest {
		status = http.StatusUnprocessableEntity
	}
	return NewDomainError(CodeRemoteRejected, message, status, nil)
}

func NewNetworkFailure(err error) error {
	return &DomainError{
		Code:       CodeNetworkFailure,
		Message:    "remote API unreachable",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
