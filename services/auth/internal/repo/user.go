package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/taskhive/taskhive/services/auth/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepo is the credential lookup surface of the token engine. Accounts
// are created and soft-deleted elsewhere; here they are read-only.
type UserRepo struct {
	DB *gorm.DB
}

// GetByUsername matches case-insensitively and resolves to at most one live
// row. Soft-deleted users are invisible.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", username).
		Where("is_deleted = ?", false).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("id = ?", id).
		Where("is_deleted = ?", false).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
