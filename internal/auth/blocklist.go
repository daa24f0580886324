// File: internal/auth/blocklist.go
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

// TokenBlocklistService records bearer tokens that were explicitly logged out.
type TokenBlocklistService interface {
	// AddToBlocklist blocks token until expiresAt.
	AddToBlocklist(ctx context.Context, token string, expiresAt time.Time) error
	// IsBlocklisted reports whether token was blocked and has not expired yet.
	IsBlocklisted(ctx context.Context, token string) (bool, error)
}

// InMemoryBlocklistService is an in-memory TokenBlocklistService. Entries are
// keyed by the SHA-256 of the token so raw tokens are never retained.
type InMemoryBlocklistService struct {
	cache *cache.Cache
}

// InMemoryBlocklistConfig holds the configuration for the InMemoryBlocklistService.
type InMemoryBlocklistConfig struct {
	DefaultExpiration time.Duration
	CleanupInterval   time.Duration
}

// NewInMemoryBlocklistService creates a new in-memory blocklist service.
func NewInMemoryBlocklistService(cfg InMemoryBlocklistConfig) *InMemoryBlocklistService {
	return &InMemoryBlocklistService{
		cache: cache.New(cfg.DefaultExpiration, cfg.CleanupInterval),
	}
}

// AddToBlocklist keeps the token blocked for as long as it would have been valid.
func (s *InMemoryBlocklistService) AddToBlocklist(_ context.Context, token string, expiresAt time.Time) error {
	duration := time.Until(expiresAt)
	if duration <= 0 {
		return nil
	}
	s.cache.Set(tokenKey(token), true, duration)
	return nil
}

// IsBlocklisted checks whether the token is in the cache.
func (s *InMemoryBlocklistService) IsBlocklisted(_ context.Context, token string) (bool, error) {
	_, found := s.cache.Get(tokenKey(token))
	return found, nil
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
