package repository

import (
	"context"
	"errors"

	"knjizara/internal/app/bookstore/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type sellerRepository struct {
	db *gorm.DB
}

// NewSellerRepository создает новый репозиторий профилей продавцов
func NewSellerRepository(db *gorm.DB) SellerRepository {
	return &sellerRepository{db: db}
}

// Create создает профиль продавца
func (r *sellerRepository) Create(ctx context.Context, profile *entity.SellerProfile) error {
	result := r.db.WithContext(ctx).Create(profile)
	return result.Error
}

// GetByID получает профиль продавца по ID
func (r *sellerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.SellerProfile, error) {
	var profile entity.SellerProfile
	result := r.db.WithContext(ctx).First(&profile, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSellerNotFound
		}
		return nil, result.Error
	}

	return &profile, nil
}

// GetByUserID получает профиль продавца по ID пользователя
// У пользователя не более одного профиля продавца
func (r *sellerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.SellerProfile, error) {
	var profile entity.SellerProfile
	result := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSellerNotFound
		}
		return nil, result.Error
	}

	return &profile, nil
}
