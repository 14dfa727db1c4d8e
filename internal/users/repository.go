package users

import (
	"context"
	"errors"

	"skybook/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetAll(ctx context.Context, limit, offset int) ([]User, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Storagef("get user", err)
	}
	return &user, nil
}

func (r *repository) GetAll(ctx context.Context, limit, offset int) ([]User, int64, error) {
	var list []User
	var totalCount int64

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	base := r.db.WithContext(ctx).Model(&User{})
	if err := base.Count(&totalCount).Error; err != nil {
		return nil, 0, apperrors.Storagef("count users", err)
	}

	err := base.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, apperrors.Storagef("list users", err)
	}

	return list, totalCount, nil
}
