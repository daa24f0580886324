package apiclient

import (
	"context"
	"errors"
	"fmt"

	"marketplace_backend/internal/domain"
	"marketplace_backend/internal/session"
)

// ProfileStore adapts Client to session.ProfileStore and session.Revoker.
type ProfileStore struct {
	client *Client
}

var (
	_ session.ProfileStore = (*ProfileStore)(nil)
	_ session.Revoker      = (*ProfileStore)(nil)
)

// NewProfileStore creates a ProfileStore backed by client.
func NewProfileStore(client *Client) *ProfileStore {
	return &ProfileStore{client: client}
}

// GetProfile returns session.ErrProfileNotFound when the account has no
// profile and an error wrapping domain.ErrInvalidRole when its role is unusable.
func (s *ProfileStore) GetProfile(ctx context.Context, token string) (*domain.Account, error) {
	acc, err := s.client.GetProfile(ctx, token)
	switch {
	case errors.Is(err, ErrProfileNotFound):
		return nil, session.ErrProfileNotFound
	case errors.Is(err, ErrInvalidProfile):
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRole, err)
	case err != nil:
		return nil, err
	}
	if !acc.Role.Valid() {
		return nil, fmt.Errorf("profile %s: %w", acc.ID, domain.ErrInvalidRole)
	}
	return acc, nil
}

// CreateProfile stores the profile of the account that owns token.
func (s *ProfileStore) CreateProfile(ctx context.Context, token string, role domain.Role, name string) (*domain.Account, error) {
	return s.client.CreateProfile(ctx, token, role, name)
}

// Logout revokes token on the server.
func (s *ProfileStore) Logout(ctx context.Context, token string) error {
	return s.client.Logout(ctx, token)
}
