// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace_backend/internal/common"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

const usersCollection = "users"

// Repository defines the interface for profile data operations.
type Repository interface {
	Create(ctx context.Context, profile *Profile) error
	FindByID(ctx context.Context, id string) (*Profile, error)
}

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a profile repository over the users collection.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

// Create writes users/{id}. An existing document is a conflict, which keeps
// the role immutable after creation.
func (r *firestoreRepository) Create(ctx context.Context, profile *Profile) error {
	_, err := r.client.Collection(usersCollection).Doc(profile.ID).Create(ctx, profile)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return common.ErrConflict.WithDetails("Profile already exists for this account.")
		}
		return fmt.Errorf("firestore create profile: %w", err)
	}
	return nil
}

// FindByID reads users/{id}.
func (r *firestoreRepository) FindByID(ctx context.Context, id string) (*Profile, error) {
	snap, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, common.ErrNotFound.WithDetails("Profile not found.")
		}
		return nil, fmt.Errorf("firestore get profile: %w", err)
	}
	var p Profile
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", id, err)
	}
	p.ID = snap.Ref.ID
	return &p, nil
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM profile repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts a new profile row.
func (r *gormRepository) Create(ctx context.Context, profile *Profile) error {
	err := r.db.WithContext(ctx).Create(profile).Error
	if err != nil {
		if isDuplicateKey(err) {
			return common.ErrConflict.WithDetails("Profile already exists for this account.")
		}
		return fmt.Errorf("gorm create profile: %w", err)
	}
	return nil
}

// FindByID retrieves a profile by account id.
func (r *gormRepository) FindByID(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Profile not found.")
		}
		return nil, fmt.Errorf("gorm get profile: %w", err)
	}
	return &p, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
