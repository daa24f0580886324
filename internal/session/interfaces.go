package session

import (
	"context"
	"errors"

	"marketplace_backend/internal/domain"
)

// ErrProfileNotFound is returned by a ProfileStore when the verified account
// has no stored profile.
var ErrProfileNotFound = errors.New("account profile not found")

// ProviderUser is the identity provider's view of the signed-in account.
type ProviderUser struct {
	UID   string
	Email string
}

// Provider is the identity provider: it owns credentials and issues ID tokens.
// Implementations invoke OnAuthStateChanged listeners with nil when no account
// is signed in. Listeners for a sign-in or sign-out must run before the
// corresponding SignIn, SignUp, SignOut or DeleteAccount call returns.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (ProviderUser, error)
	SignIn(ctx context.Context, email, password string) (ProviderUser, error)
	SignOut(ctx context.Context) error
	// DeleteAccount deletes the signed-in account and signs it out.
	DeleteAccount(ctx context.Context) error
	IDToken(ctx context.Context, forceRefresh bool) (string, error)
	OnAuthStateChanged(fn func(user *ProviderUser)) (unsubscribe func())
}

// ProfileStore reads and writes account profiles on behalf of the bearer of token.
type ProfileStore interface {
	// GetProfile returns ErrProfileNotFound when no profile exists, or an error
	// wrapping domain.ErrInvalidRole when the stored role is not valid.
	GetProfile(ctx context.Context, token string) (*domain.Account, error)
	CreateProfile(ctx context.Context, token string, role domain.Role, name string) (*domain.Account, error)
}

// Revoker is implemented by profile stores that can end the server side of a
// session. Logout calls it before signing out of the provider.
type Revoker interface {
	Logout(ctx context.Context, token string) error
}

// TokenStore persists the bearer token across client restarts.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// NoticeKind classifies user-facing notifications.
type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeError
)

func (k NoticeKind) String() string {
	if k == NoticeError {
		return "error"
	}
	return "success"
}

// Notifier shows toast-style messages. It may be called from any goroutine.
type Notifier interface {
	Notify(kind NoticeKind, message string)
}

// Navigator changes the current route. It may be called from any goroutine.
type Navigator interface {
	Navigate(path string)
}
