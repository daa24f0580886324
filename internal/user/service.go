package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/domain"

	"go.uber.org/zap"
)

// Service exposes profile reads and the one-time profile creation.
type Service interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	CreateProfile(ctx context.Context, uid, email string, req CreateProfileRequest) (*domain.Account, error)
}

// ErrInvalidStoredRole marks a stored profile whose role is outside the enum.
var ErrInvalidStoredRole = errors.New("stored profile has an invalid role")

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		logger: logger.Named("user_service"),
		now:    time.Now,
	}
}

// GetAccount loads the profile for id and validates its role. It returns
// common.ErrNotFound when no profile exists and ErrInvalidStoredRole when the
// stored role is not one of the enumerated roles.
func (s *ServiceImplementation) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	acc, err := p.ToAccount()
	if err != nil {
		s.logger.Warn("Profile has invalid role", zap.String("accountID", id), zap.String("role", p.Role))
		return nil, fmt.Errorf("%w: %w", ErrInvalidStoredRole, err)
	}
	return acc, nil
}

// CreateProfile stores the profile for a freshly registered account. uid and
// email come from the verified token; only role and name come from the body.
func (s *ServiceImplementation) CreateProfile(ctx context.Context, uid, email string, req CreateProfileRequest) (*domain.Account, error) {
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return nil, common.ErrInvalidRole
	}
	if uid == "" || email == "" {
		return nil, common.ErrInvalidToken.WithDetails("Token carries no account id or email.")
	}

	p := &Profile{
		ID:        uid,
		Email:     email,
		Role:      role.String(),
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if _, ok := common.IsAPIError(err); ok {
			return nil, err
		}
		s.logger.Error("Failed to create profile", zap.Error(err), zap.String("accountID", uid))
		return nil, fmt.Errorf("create profile: %w", err)
	}

	s.logger.Info("Profile created", zap.String("accountID", uid), zap.String("role", p.Role))
	return p.ToAccount()
}
