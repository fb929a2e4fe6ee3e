package service

import (
	"context"
	"errors"
	"fmt"

	"knjizara/internal/app/bookstore/entity"
	"knjizara/internal/app/bookstore/repository"

	"github.com/google/uuid"
)

// WishlistService управляет списком желаний пользователя
type WishlistService struct {
	wishlistRepo repository.WishlistRepository
	bookRepo     repository.BookRepository
}

// NewWishlistService создает новый сервис списка желаний
func NewWishlistService(wishlistRepo repository.WishlistRepository, bookRepo repository.BookRepository) *WishlistService {
	return &WishlistService{
		wishlistRepo: wishlistRepo,
		bookRepo:     bookRepo,
	}
}

// AddToWishlist добавляет книгу в список желаний
// Повторное добавление идемпотентно: возвращается существующая запись
func (s *WishlistService) AddToWishlist(ctx context.Context, userID, bookID uuid.UUID) (*entity.WishlistItem, error) {
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	existing, err := s.wishlistRepo.GetByUserAndBook(ctx, userID, bookID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrWishlistItemNotFound) {
		return nil, fmt.Errorf("failed to check wishlist: %w", err)
	}

	item := &entity.WishlistItem{
		ID:     uuid.New(),
		UserID: userID,
		BookID: bookID,
	}

	if err := s.wishlistRepo.Create(ctx, item); err != nil {
		// Конкурентное добавление той же книги упирается в уникальный
		// индекс - возвращаем уже существующую запись
		if errors.Is(err, repository.ErrDuplicateKey) {
			return s.wishlistRepo.GetByUserAndBook(ctx, userID, bookID)
		}
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}

	return item, nil
}

// GetWishlist возвращает список желаний пользователя с книгами
func (s *WishlistService) GetWishlist(ctx context.Context, userID uuid.UUID) ([]entity.WishlistItem, error) {
	items, err := s.wishlistRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	return items, nil
}

// IsInWishlist проверяет, есть ли книга в списке желаний пользователя
func (s *WishlistService) IsInWishlist(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	_, err := s.wishlistRepo.GetByUserAndBook(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrWishlistItemNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check wishlist: %w", err)
	}
	return true, nil
}

// RemoveFromWishlist убирает книгу из списка желаний
func (s *WishlistService) RemoveFromWishlist(ctx context.Context, userID, bookID uuid.UUID) error {
	item, err := s.wishlistRepo.GetByUserAndBook(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrWishlistItemNotFound) {
			return ErrNotInWishlist
		}
		return fmt.Errorf("failed to check wishlist: %w", err)
	}

	if err := s.wishlistRepo.Delete(ctx, item.ID); err != nil {
		if errors.Is(err, repository.ErrWishlistItemNotFound) {
			return ErrNotInWishlist
		}
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}

	return nil
}
