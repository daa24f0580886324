// File: internal/common/context_keys.go
package common

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// AccountIDKey is the context key for the verified account ID (token subject)
	AccountIDKey = "accountID"
	// AccountEmailKey is the context key for the verified account email
	AccountEmailKey = "accountEmail"
	// AccountRoleKey is the context key for the account's domain.Role
	AccountRoleKey = "accountRole"
	// RawTokenKey is the context key for the presented bearer token
	RawTokenKey = "rawToken"
	// TokenExpiryKey is the context key for the bearer token's expiry time
	TokenExpiryKey = "tokenExpiry"
	// RequestIDHeader carries the per-request correlation ID
	RequestIDHeader = "X-Request-ID"
)
