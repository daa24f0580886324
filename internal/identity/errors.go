package identity

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/googleapi"
)

// Error is an identity provider failure with a stable "auth/..." code.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.message == "" {
		return "identity: " + e.code
	}
	return "identity: " + e.code + ": " + e.message
}

// Code returns the stable provider code, e.g. "auth/wrong-password".
func (e *Error) Code() string { return e.code }

func (e *Error) Unwrap() error { return e.err }

// ErrNoCurrentUser is returned when an operation needs a signed-in account.
var ErrNoCurrentUser = &Error{code: "auth/no-current-user", message: "no account is signed in"}

// REST error messages to provider codes.
var codesByMessage = map[string]string{
	"EMAIL_EXISTS":                   "auth/email-already-in-use",
	"INVALID_EMAIL":                  "auth/invalid-email",
	"WEAK_PASSWORD":                  "auth/weak-password",
	"MISSING_PASSWORD":               "auth/missing-password",
	"MISSING_EMAIL":                  "auth/missing-email",
	"EMAIL_NOT_FOUND":                "auth/user-not-found",
	"USER_NOT_FOUND":                 "auth/user-not-found",
	"INVALID_PASSWORD":               "auth/wrong-password",
	"INVALID_LOGIN_CREDENTIALS":      "auth/invalid-credential",
	"TOO_MANY_ATTEMPTS_TRY_LATER":    "auth/too-many-requests",
	"USER_DISABLED":                  "auth/user-disabled",
	"OPERATION_NOT_ALLOWED":          "auth/operation-not-allowed",
	"PASSWORD_LOGIN_DISABLED":        "auth/operation-not-allowed",
	"TOKEN_EXPIRED":                  "auth/user-token-expired",
	"CREDENTIAL_TOO_OLD_LOGIN_AGAIN": "auth/requires-recent-login",
	"INVALID_ID_TOKEN":               "auth/invalid-user-token",
	"INVALID_REFRESH_TOKEN":          "auth/invalid-user-token",
	"MISSING_REFRESH_TOKEN":          "auth/invalid-user-token",
	"API_KEY_INVALID":                "auth/invalid-api-key",
}

// codeForMessage maps messages like "WEAK_PASSWORD : Password should be at
// least 6 characters" to a provider code.
func codeForMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	if strings.HasPrefix(msg, "API key not valid") {
		return "auth/invalid-api-key"
	}
	key := msg
	if i := strings.IndexAny(msg, " :"); i >= 0 {
		key = msg[:i]
	}
	if code, ok := codesByMessage[key]; ok {
		return code
	}
	if key == "" {
		return "auth/internal-error"
	}
	return "auth/" + strings.ToLower(strings.ReplaceAll(key, "_", "-"))
}

// classify converts transport and API errors into *Error. Context errors are
// returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &Error{code: codeForMessage(gerr.Message), message: gerr.Message, err: err}
	}
	return &Error{code: "auth/network-request-failed", message: err.Error(), err: err}
}

// isRevokedCode reports codes after which the stored credential is useless.
func isRevokedCode(code string) bool {
	switch code {
	case "auth/user-token-expired", "auth/invalid-user-token", "auth/user-disabled", "auth/user-not-found":
		return true
	}
	return false
}
