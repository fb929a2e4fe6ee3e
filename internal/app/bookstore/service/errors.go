package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrBookNotFound     = errors.New("book not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrSellerNotFound   = errors.New("seller profile not found")
	ErrAddressNotFound  = errors.New("address not found")
	ErrOrderNotFound    = errors.New("order not found")

	// Forbidden: пользователь не владеет ресурсом
	ErrForbidden = errors.New("access denied")

	// Validation: нарушены бизнес-правила запроса
	ErrEmptyOrder              = errors.New("order must contain at least one item")
	ErrInsufficientStock       = errors.New("requested quantity exceeds available stock")
	ErrInvalidDiscountPrice    = errors.New("discount price must be lower than price")
	ErrBookOrdered             = errors.New("book is referenced by orders and cannot be deleted")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrAlreadySeller           = errors.New("user already has a seller profile")
	ErrNotInWishlist           = errors.New("book is not in wishlist")
)
