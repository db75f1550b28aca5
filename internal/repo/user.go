package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/blogpost/internal/models"
)

// CreateUser inserts u unless the email or the username is already taken.
// The unique indexes catch registrations racing past the existence check.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR username = ?", u.Email, u.Username).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUserAlreadyExists
	}

	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// IncrementUserCost adds amount in a single UPDATE, no read-modify-write.
func (r *GormRepo) IncrementUserCost(ctx context.Context, email string, amount float64) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		UpdateColumn("user_cost", gorm.Expr("user_cost + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
