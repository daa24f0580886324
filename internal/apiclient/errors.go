package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnexpectedResponse is returned for responses that are not the JSON the
// API produces, such as an HTML error page from a proxy. The body is dropped.
var ErrUnexpectedResponse = errors.New("unexpected response from server")

// Error is a non-2xx JSON response from the API.
type Error struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// UserMessage returns the sentence shown to the user. Authorization failures
// never reveal which rule failed.
func (e *Error) UserMessage() string {
	switch {
	case e.Status == http.StatusForbidden:
		return "You do not have permission to do that."
	case e.Status >= http.StatusInternalServerError:
		return "Something went wrong. Please try again."
	case e.Message != "":
		return e.Message
	}
	return "Something went wrong. Please try again."
}

// IsSessionExpired reports an expired bearer token; callers refresh the
// token and retry once.
func (e *Error) IsSessionExpired() bool {
	return e.Status == http.StatusUnauthorized && e.Code == "SESSION_EXPIRED"
}

// Is matches API errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is checks against decoded responses.
var (
	ErrProfileNotFound = &Error{Status: http.StatusUnauthorized, Code: "PROFILE_NOT_FOUND"}
	ErrInvalidProfile  = &Error{Status: http.StatusUnauthorized, Code: "INVALID_PROFILE"}
	ErrSessionExpired  = &Error{Status: http.StatusUnauthorized, Code: "SESSION_EXPIRED"}
	ErrTokenRevoked    = &Error{Status: http.StatusUnauthorized, Code: "TOKEN_REVOKED"}
	ErrForbidden       = &Error{Status: http.StatusForbidden, Code: "FORBIDDEN"}
)
