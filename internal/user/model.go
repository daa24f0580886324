// File: internal/user/model.go
package user

import (
	"fmt"
	"time"

	"marketplace_backend/internal/domain"
)

// Profile is the stored account profile, users/{id} in Firestore or the users
// table in SQL. Role is kept as the raw stored string so a corrupt value is
// detected on read instead of silently coerced.
type Profile struct {
	ID        string    `gorm:"type:varchar(128);primaryKey" firestore:"-"`
	Email     string    `gorm:"type:varchar(255);not null" firestore:"email"`
	Role      string    `gorm:"type:varchar(20);not null" firestore:"role"`
	Name      string    `gorm:"type:varchar(100)" firestore:"name,omitempty"`
	CreatedAt time.Time `gorm:"not null" firestore:"createdAt"`
}

// TableName specifies the table name for the Profile model.
func (Profile) TableName() string {
	return "users"
}

// ToAccount validates the stored role and returns the account projection.
func (p *Profile) ToAccount() (*domain.Account, error) {
	role, err := domain.ParseRole(p.Role)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.ID, err)
	}
	return &domain.Account{
		ID:        p.ID,
		Email:     p.Email,
		Role:      role,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}, nil
}

// CreateProfileRequest is the body of POST /api/users/profile. The account id
// and email always come from the verified token.
type CreateProfileRequest struct {
	Role string `json:"role" binding:"required"`
	Name string `json:"name,omitempty" binding:"omitempty,max=100"`
}
