package repository

import (
	"context"

	"github.com/ozgun/catalogd/internal/domain"
	"gorm.io/gorm"
)

// UserRepository handles user lookups. Account management itself lives in
// the external auth service; this repository only reads.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// ListRecipients returns the email address of every administrator, the
// recipient set for ingestion notifications.
func (r *UserRepository) ListRecipients(ctx context.Context) ([]string, error) {
	var emails []string
	if err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("is_admin = ?", true).
		Order("email ASC").
		Pluck("email", &emails).Error; err != nil {
		return nil, newPersistenceError("list admin emails", err)
	}
	return emails, nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
