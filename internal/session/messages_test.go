package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"marketplace_backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

type userFacingErr struct{}

func (userFacingErr) Error() string       { return "api: 502" }
func (userFacingErr) UserMessage() string { return "Server error. Please try again." }

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"known provider code", codedErr("auth/too-many-requests"), "Too many attempts. Please try again later."},
		{"wrapped provider code", fmt.Errorf("sign in: %w", codedErr("auth/user-token-expired")), "Your session has expired. Please login again."},
		{"unknown provider code", codedErr("auth/quota-exceeded"), "An error occurred (auth/quota-exceeded). Please try again."},
		{"missing profile", ErrProfileNotFound, "Account profile not found. Please contact support."},
		{"invalid role", fmt.Errorf("stored: %w", domain.ErrInvalidRole), "Account profile not found. Please contact support."},
		{"validation", &ValidationError{Field: "email", Message: "Please enter a valid email address."}, "Please enter a valid email address."},
		{"user facing", userFacingErr{}, "Server error. Please try again."},
		{"timeout", context.DeadlineExceeded, "The operation timed out. Please try again."},
		{"anything else", errors.New("boom"), "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err))
		})
	}
}
