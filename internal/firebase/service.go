package firebase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"marketplace_backend/internal/config"
)

// Token verification outcomes. Callers map these to API error codes.
var (
	ErrTokenEmpty   = errors.New("ID token must not be empty")
	ErrTokenExpired = errors.New("ID token has expired")
	ErrTokenRevoked = errors.New("ID token has been revoked")
	ErrTokenInvalid = errors.New("ID token is invalid")
)

// FirebaseService wraps the Admin SDK: token verification, refresh-token
// revocation and, when the document store is Firestore, the Firestore client.
type FirebaseService struct {
	app        *firebase.App
	authClient *auth.Client
	firestore  *firestore.Client
	logger     *zap.Logger
}

// NewFirebaseService initializes the Firebase Admin SDK and creates a new FirebaseService.
func NewFirebaseService(cfg *config.Config, logger *zap.Logger) (*FirebaseService, error) {
	logger = logger.Named("firebase")
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Error("Firebase service account key path is not configured.")
		return nil, fmt.Errorf("firebase service account key path is required")
	}

	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var conf *firebase.Config
	if cfg.FirebaseProjectID != "" {
		conf = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	svc := &FirebaseService{app: app, authClient: authClient, logger: logger}

	if cfg.DocumentStore == config.StoreFirestore {
		fs, err := app.Firestore(ctx)
		if err != nil {
			logger.Error("Failed to get Firestore client", zap.Error(err))
			return nil, fmt.Errorf("error getting Firestore client: %w", err)
		}
		svc.firestore = fs
	}

	logger.Info("Firebase Admin SDK initialized successfully.", zap.Bool("firestore", svc.firestore != nil))
	return svc, nil
}

// Firestore returns the Firestore client, or nil when another document store is configured.
func (s *FirebaseService) Firestore() *firestore.Client {
	return s.firestore
}

// VerifyIDToken verifies a Firebase ID token, including the revocation check,
// and returns its claims. Failures are classified into ErrTokenExpired,
// ErrTokenRevoked and ErrTokenInvalid.
func (s *FirebaseService) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if idToken == "" {
		return nil, ErrTokenEmpty
	}

	token, err := s.authClient.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		s.logger.Debug("Firebase ID token verification failed", zap.Error(err))
		return nil, classifyTokenError(err)
	}

	s.logger.Debug("Firebase ID token verified successfully", zap.String("uid", token.UID))
	return token, nil
}

func classifyTokenError(err error) error {
	switch {
	case auth.IsIDTokenExpired(err):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case auth.IsIDTokenRevoked(err), auth.IsUserDisabled(err):
		return fmt.Errorf("%w: %v", ErrTokenRevoked, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}

// RevokeRefreshTokens revokes all refresh tokens for a given user.
func (s *FirebaseService) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if err := s.authClient.RevokeRefreshTokens(ctx, uid); err != nil {
		s.logger.Error("Failed to revoke refresh tokens", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	s.logger.Info("Successfully revoked refresh tokens for user", zap.String("uid", uid))
	return nil
}

// Close releases the Firestore client if one was opened.
func (s *FirebaseService) Close() error {
	if s.firestore == nil {
		return nil
	}
	return s.firestore.Close()
}
