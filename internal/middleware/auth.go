// File: internal/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"time"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/domain"
	"marketplace_backend/internal/firebase"
	"marketplace_backend/internal/metrics"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenVerifier verifies provider-issued ID tokens.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AccountLoader resolves the verified account's profile. It returns an error
// matching common.ErrNotFound when no profile exists and one matching
// domain.ErrInvalidRole when the stored role is not valid.
type AccountLoader interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
}

// TokenBlocklist reports tokens that were explicitly logged out.
type TokenBlocklist interface {
	IsBlocklisted(ctx context.Context, token string) (bool, error)
}

// Authenticator builds the token and profile middlewares from shared dependencies.
type Authenticator struct {
	verifier  TokenVerifier
	accounts  AccountLoader
	blocklist TokenBlocklist
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewAuthenticator creates an Authenticator. blocklist and m may be nil.
func NewAuthenticator(verifier TokenVerifier, accounts AccountLoader, blocklist TokenBlocklist, m *metrics.Metrics, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		verifier:  verifier,
		accounts:  accounts,
		blocklist: blocklist,
		metrics:   m,
		logger:    logger.Named("auth_middleware"),
	}
}

// TokenMiddleware verifies the bearer token only. Used where the profile may
// not exist yet (profile creation, logout).
func (a *Authenticator) TokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := a.verify(c); !ok {
			return
		}
		c.Next()
	}
}

// AuthMiddleware verifies the bearer token and loads the caller's profile. The
// account id, email, role, raw token and expiry are stored on the context.
func (a *Authenticator) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := a.verify(c)
		if !ok {
			return
		}

		acc, err := a.accounts.GetAccount(c.Request.Context(), token.UID)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrNotFound):
				a.reject(c, common.ErrProfileNotFound)
			case errors.Is(err, domain.ErrInvalidRole):
				a.reject(c, common.ErrInvalidProfile)
			default:
				a.logger.Error("Failed to load account profile", zap.Error(err), zap.String("accountID", token.UID))
				common.RespondWithError(c, common.ErrInternalServer)
			}
			return
		}

		c.Set(common.AccountRoleKey, acc.Role)
		a.logger.Debug("Account authenticated",
			zap.String("accountID", acc.ID),
			zap.String("role", acc.Role.String()),
		)
		c.Next()
	}
}

func (a *Authenticator) verify(c *gin.Context) (*auth.Token, bool) {
	raw := common.GetTokenFromHeader(c)
	if raw == "" {
		a.reject(c, common.ErrMissingAuthHeader)
		return nil, false
	}

	if a.blocklist != nil {
		blocked, err := a.blocklist.IsBlocklisted(c.Request.Context(), raw)
		if err != nil {
			a.logger.Error("Blocklist lookup failed", zap.Error(err))
			common.RespondWithError(c, common.ErrInternalServer)
			return nil, false
		}
		if blocked {
			a.reject(c, common.ErrTokenRevoked)
			return nil, false
		}
	}

	token, err := a.verifier.VerifyIDToken(c.Request.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, firebase.ErrTokenExpired):
			a.reject(c, common.ErrSessionExpired)
		case errors.Is(err, firebase.ErrTokenRevoked):
			a.reject(c, common.ErrTokenRevoked)
		default:
			a.reject(c, common.ErrInvalidToken)
		}
		return nil, false
	}

	c.Set(common.AccountIDKey, token.UID)
	c.Set(common.AccountEmailKey, TokenEmail(token))
	c.Set(common.RawTokenKey, raw)
	c.Set(common.TokenExpiryKey, time.Unix(token.Expires, 0))
	return token, true
}

func (a *Authenticator) reject(c *gin.Context, apiErr *common.APIError) {
	a.metrics.AuthFailure(apiErr.Code)
	a.logger.Debug("Request rejected", zap.String("code", apiErr.Code), zap.String("path", c.Request.URL.Path))
	common.RespondWithError(c, apiErr)
}

// TokenEmail returns the email claim of a verified token, or "".
func TokenEmail(token *auth.Token) string {
	if token == nil || token.Claims == nil {
		return ""
	}
	email, _ := token.Claims["email"].(string)
	return email
}

// RoleAuthMiddleware allows only the listed roles. Requests without a valid
// role on the context are refused as well.
func RoleAuthMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := common.GetAccountRoleFromContext(c)
		if !ok {
			common.RespondWithError(c, common.ErrForbidden)
			return
		}
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		common.RespondWithError(c, common.ErrForbidden)
	}
}
