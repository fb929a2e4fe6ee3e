package repository

import (
	"context"
	"errors"
	"time"

	"knjizara/internal/app/bookstore/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrBookNotFound         = errors.New("book not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrSellerNotFound       = errors.New("seller profile not found")
	ErrAddressNotFound      = errors.New("address not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrWishlistItemNotFound = errors.New("wishlist item not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrDuplicateKey         = errors.New("duplicate key")
)

// BookFilter - набор фасетов каталожного запроса
// Все заданные фасеты применяются по AND; Search раскрывается в OR
// по пяти текстовым полям. Nil-указатель - фасет не задан
type BookFilter struct {
	Search     string
	CategoryID *uuid.UUID
	MinPrice   *float64
	MaxPrice   *float64
	Condition  entity.BookCondition
	Binding    entity.BookBinding
	SellerType entity.SellerType
	SellerID   *uuid.UUID
	Status     entity.ListingStatus
	Featured   *bool
	Bestseller *bool
	SortBy     string
	Offset     int
	Limit      int
}

// BookRepository - доступ к книгам/объявлениям
type BookRepository interface {
	Create(ctx context.Context, book *entity.Book, categoryIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Book, error)
	List(ctx context.Context, filter BookFilter) ([]entity.Book, int64, error)
	Update(ctx context.Context, book *entity.Book) error
	SetCategories(ctx context.Context, bookID uuid.UUID, categoryIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountOrderItems(ctx context.Context, bookID uuid.UUID) (int64, error)
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CategoryRepository - доступ к категориям каталога
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SellerRepository - доступ к профилям продавцов
type SellerRepository interface {
	Create(ctx context.Context, profile *entity.SellerProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.SellerProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.SellerProfile, error)
}

// AddressRepository - доступ к адресам доставки
// Create, Update и SetDefault обязаны сбрасывать предыдущий дефолтный
// адрес пользователя в одной транзакции с установкой нового
type AddressRepository interface {
	Create(ctx context.Context, address *entity.Address) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Address, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Address, error)
	Update(ctx context.Context, address *entity.Address) error
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderRepository - доступ к заказам
// CreateWithItems выполняет одну транзакцию: перечитывает остатки
// с блокировкой строк, отклоняет заказ целиком при нехватке
// и сохраняет заказ вместе с позициями
type OrderRepository interface {
	CreateWithItems(ctx context.Context, order *entity.Order, items []entity.OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, status entity.OrderStatus, offset, limit int) ([]entity.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.OrderStatus, trackingNumber string) error
}

// WishlistRepository - доступ к спискам желаний
type WishlistRepository interface {
	Create(ctx context.Context, item *entity.WishlistItem) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.WishlistItem, error)
	GetByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (*entity.WishlistItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByBookID(ctx context.Context, bookID uuid.UUID) error
}
