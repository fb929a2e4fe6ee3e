package repository

import (
	"context"
	"errors"

	"knjizara/internal/app/bookstore/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type wishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository создает новый репозиторий списков желаний
func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

// Create добавляет книгу в список желаний
// Пара (user, book) защищена уникальным индексом: конкурентное
// добавление той же книги возвращает ErrDuplicateKey
func (r *wishlistRepository) Create(ctx context.Context, item *entity.WishlistItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetByUserID получает список желаний пользователя, новые первыми
func (r *wishlistRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.WishlistItem, error) {
	var items []entity.WishlistItem
	result := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Book.Categories").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items)

	if result.Error != nil {
		return nil, result.Error
	}

	return items, nil
}

// GetByUserAndBook получает запись списка желаний по паре (user, book)
func (r *wishlistRepository) GetByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (*entity.WishlistItem, error) {
	var item entity.WishlistItem
	result := r.db.WithContext(ctx).
		First(&item, "user_id = ? AND book_id = ?", userID, bookID)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrWishlistItemNotFound
		}
		return nil, result.Error
	}

	return &item, nil
}

// Delete удаляет запись списка желаний
func (r *wishlistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.WishlistItem{}, "id = ?", id)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrWishlistItemNotFound
	}

	return nil
}

// DeleteByBookID удаляет книгу из всех списков желаний
// Вызывается перед удалением объявления
func (r *wishlistRepository) DeleteByBookID(ctx context.Context, bookID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&entity.WishlistItem{}, "book_id = ?", bookID).Error
}
