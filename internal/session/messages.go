package session

import (
	"context"
	"errors"
	"fmt"

	"marketplace_backend/internal/domain"
)

// ErrIntegrity marks a signed-in account without a usable profile. The session
// is reset whenever it occurs.
var ErrIntegrity = errors.New("account profile missing or invalid")

// ErrSessionChanged is returned by Login when another sign-in or sign-out
// replaced the account while the login was in flight.
var ErrSessionChanged = errors.New("session changed while signing in")

const (
	integrityMessage = "Account profile not found. Please contact support."
	genericMessage   = "Something went wrong. Please try again."
)

// ValidationError is an input error detected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// coded is implemented by identity provider errors.
type coded interface {
	Code() string
}

// userMessager is implemented by errors that already carry a user-facing sentence.
type userMessager interface {
	UserMessage() string
}

var providerMessages = map[string]string{
	"auth/email-already-in-use":                     "This email is already registered. Please use a different email or login.",
	"auth/invalid-email":                            "Please enter a valid email address.",
	"auth/weak-password":                            "Password should be at least 6 characters.",
	"auth/missing-password":                         "Please enter your password.",
	"auth/missing-email":                            "Please enter your email address.",
	"auth/user-not-found":                           "No account found with this email.",
	"auth/wrong-password":                           "Incorrect password. Please try again.",
	"auth/too-many-requests":                        "Too many attempts. Please try again later.",
	"auth/account-exists-with-different-credential": "An account already exists with this email.",
	"auth/requires-recent-login":                    "Please login again to perform this action.",
	"auth/user-disabled":                            "This account has been disabled.",
	"auth/operation-not-allowed":                    "This operation is not allowed.",
	"auth/invalid-credential":                       "Invalid login credentials.",
	"auth/network-request-failed":                   "Network error. Please check your internet connection.",
	"auth/internal-error":                           "Internal server error. Please try again later.",
	"auth/invalid-api-key":                          "Invalid API key. Please contact support.",
	"auth/app-not-authorized":                       "Application not authorized to use Firebase Authentication.",
	"auth/invalid-user-token":                       "Your session has expired. Please login again.",
	"auth/user-token-expired":                       "Your session has expired. Please login again.",
}

// ErrorMessage turns any error into the sentence shown to the user.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if errors.Is(err, ErrIntegrity) || errors.Is(err, ErrProfileNotFound) || errors.Is(err, domain.ErrInvalidRole) {
		return integrityMessage
	}

	var c coded
	if errors.As(err, &c) {
		if msg, ok := providerMessages[c.Code()]; ok {
			return msg
		}
		return fmt.Sprintf("An error occurred (%s). Please try again.", c.Code())
	}

	var um userMessager
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The operation timed out. Please try again."
	}
	return genericMessage
}

// isIntegrityError reports profile lookups that must end the session.
func isIntegrityError(err error) bool {
	return errors.Is(err, ErrProfileNotFound) || errors.Is(err, domain.ErrInvalidRole) || errors.Is(err, ErrIntegrity)
}

// isExpiredCredential reports provider errors that mean the stored credential
// can no longer mint tokens.
func isExpiredCredential(err error) bool {
	var c coded
	if !errors.As(err, &c) {
		return false
	}
	switch c.Code() {
	case "auth/user-token-expired", "auth/invalid-user-token", "auth/user-disabled", "auth/user-not-found":
		return true
	}
	return false
}
