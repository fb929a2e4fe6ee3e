package entity

import "github.com/google/uuid"

// SortBy - варианты сортировки каталога
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortTitle     = "title"
)

// ListBooksQuery - параметры запроса каталога
// Все фасеты объединяются по AND, поиск - по OR внутри текстовых полей.
// Nil-указатель означает, что фасет не задан
type ListBooksQuery struct {
	Page       int            `form:"page" validate:"omitempty,min=1"`
	Limit      int            `form:"limit" validate:"omitempty,min=1,max=100"`
	Search     string         `form:"search"`
	CategoryID *uuid.UUID     `form:"category_id"`
	MinPrice   *float64       `form:"min_price" validate:"omitempty,gte=0"`
	MaxPrice   *float64       `form:"max_price" validate:"omitempty,gte=0"`
	Condition  BookCondition  `form:"condition" validate:"omitempty,oneof=NEW LIKE_NEW VERY_GOOD GOOD ACCEPTABLE"`
	Binding    BookBinding    `form:"binding" validate:"omitempty,oneof=HARDCOVER SOFTCOVER"`
	SellerType SellerType     `form:"seller_type" validate:"omitempty,oneof=PRIVATE BUSINESS"`
	SellerID   *uuid.UUID     `form:"seller_id"`
	Status     ListingStatus  `form:"status" validate:"omitempty,oneof=ACTIVE PAUSED SOLD EXPIRED"`
	Featured   *bool          `form:"featured"`
	Bestseller *bool          `form:"bestseller"`
	SortBy     string         `form:"sort_by" validate:"omitempty,oneof=newest price_asc price_desc title"`
}

// UpdateBookFlagsRequest - кураторские флаги витрины (админ)
// Непереданный флаг не изменяется
type UpdateBookFlagsRequest struct {
	Featured   *bool `json:"featured"`
	Bestseller *bool `json:"bestseller"`
}

// BookListResponse - страница каталога
type BookListResponse struct {
	Books      []Book `json:"books"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
}

// CreateListingRequest - создание объявления продавцом
// Кириллические пары полей заполняются автоматически транслитерацией
type CreateListingRequest struct {
	Title         string        `json:"title" validate:"required,min=2,max=300"`
	Author        string        `json:"author" validate:"required,min=2,max=200"`
	Description   string        `json:"description" validate:"omitempty,max=5000"`
	Price         float64       `json:"price" validate:"required,gt=0"`
	DiscountPrice *float64      `json:"discount_price" validate:"omitempty,gt=0"`
	Condition     BookCondition `json:"condition" validate:"required,oneof=NEW LIKE_NEW VERY_GOOD GOOD ACCEPTABLE"`
	CategoryIDs   []uuid.UUID   `json:"category_ids" validate:"required,min=1"`
	CoverImage    string        `json:"cover_image"`
	ISBN          string        `json:"isbn" validate:"omitempty,max=50"`
	Publisher     string        `json:"publisher" validate:"omitempty,max=200"`
	PublishYear   int           `json:"publish_year" validate:"omitempty,min=1000,max=2100"`
	PageCount     int           `json:"page_count" validate:"omitempty,min=0"`
	Binding       BookBinding   `json:"binding" validate:"omitempty,oneof=HARDCOVER SOFTCOVER"`
	Language      string        `json:"language" validate:"omitempty,max=50"`
	IsNegotiable  bool          `json:"is_negotiable"`
	Stock         int           `json:"stock" validate:"omitempty,min=0"`
}

// UpdateListingRequest - частичное обновление объявления
// Непереданные поля не изменяются; измененные текстовые поля
// транслитерируются заново
type UpdateListingRequest struct {
	Title         *string        `json:"title" validate:"omitempty,min=2,max=300"`
	Author        *string        `json:"author" validate:"omitempty,min=2,max=200"`
	Description   *string        `json:"description" validate:"omitempty,max=5000"`
	Price         *float64       `json:"price" validate:"omitempty,gt=0"`
	DiscountPrice *float64       `json:"discount_price" validate:"omitempty,gt=0"`
	Condition     *BookCondition `json:"condition" validate:"omitempty,oneof=NEW LIKE_NEW VERY_GOOD GOOD ACCEPTABLE"`
	CategoryIDs   []uuid.UUID    `json:"category_ids" validate:"omitempty,min=1"`
	CoverImage    *string        `json:"cover_image"`
	Publisher     *string        `json:"publisher" validate:"omitempty,max=200"`
	PublishYear   *int           `json:"publish_year" validate:"omitempty,min=1000,max=2100"`
	PageCount     *int           `json:"page_count" validate:"omitempty,min=0"`
	Binding       *BookBinding   `json:"binding" validate:"omitempty,oneof=HARDCOVER SOFTCOVER"`
	Language      *string        `json:"language" validate:"omitempty,max=50"`
	IsNegotiable  *bool          `json:"is_negotiable"`
	Stock         *int           `json:"stock" validate:"omitempty,min=0"`
}

// ToggleListingStatusRequest - пауза/возобновление объявления
// Допустимы только ACTIVE и PAUSED; SOLD выставляется отдельной операцией
type ToggleListingStatusRequest struct {
	Status ListingStatus `json:"status" validate:"required,oneof=ACTIVE PAUSED"`
}

// MyListingsQuery - список объявлений продавца
// Продавец может запросить любой статус своих объявлений
type MyListingsQuery struct {
	Status ListingStatus `form:"status" validate:"omitempty,oneof=ACTIVE PAUSED SOLD EXPIRED"`
	Page   int           `form:"page" validate:"omitempty,min=1"`
	Limit  int           `form:"limit" validate:"omitempty,min=1,max=100"`
}

// RegisterSellerRequest - регистрация продавца
type RegisterSellerRequest struct {
	Type        SellerType `json:"type" validate:"required,oneof=PRIVATE BUSINESS"`
	DisplayName string     `json:"display_name" validate:"required,min=2,max=100"`
	Phone       string     `json:"phone" validate:"omitempty,max=30"`
	City        string     `json:"city" validate:"omitempty,max=100"`
}

// OrderItemRequest - позиция при создании заказа
type OrderItemRequest struct {
	BookID   uuid.UUID `json:"book_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest - оформление заказа
type CreateOrderRequest struct {
	AddressID     uuid.UUID          `json:"address_id" validate:"required"`
	Items         []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod PaymentMethod      `json:"payment_method" validate:"required,oneof=CASH_ON_DELIVERY CARD"`
}

// QuoteOrderRequest - расчет стоимости корзины без создания заказа
// Используется предпросмотром корзины и шагом оформления:
// тот же калькулятор, та же конфигурация доставки, что и при создании заказа
type QuoteOrderRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderTotals - результат расчета стоимости
type OrderTotals struct {
	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shipping_cost"`
	Total        float64 `json:"total"`
}

// UpdateOrderStatusRequest - смена статуса заказа продавцом/админом
type UpdateOrderStatusRequest struct {
	Status         OrderStatus `json:"status" validate:"required,oneof=PENDING PROCESSING SHIPPED DELIVERED CANCELLED"`
	TrackingNumber string      `json:"tracking_number" validate:"omitempty,max=100"`
}

// SellerOrdersQuery - заказы, содержащие книги продавца
type SellerOrdersQuery struct {
	Status OrderStatus `form:"status" validate:"omitempty,oneof=PENDING PROCESSING SHIPPED DELIVERED CANCELLED"`
	Page   int         `form:"page" validate:"omitempty,min=1"`
	Limit  int         `form:"limit" validate:"omitempty,min=1,max=100"`
}

// OrderListResponse - страница заказов
type OrderListResponse struct {
	Orders     []Order `json:"orders"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
}

// CreateAddressRequest - создание адреса доставки
type CreateAddressRequest struct {
	FullName   string `json:"full_name" validate:"required,min=2,max=150"`
	Street     string `json:"street" validate:"required,min=2,max=200"`
	City       string `json:"city" validate:"required,min=2,max=100"`
	PostalCode string `json:"postal_code" validate:"required,min=2,max=20"`
	Phone      string `json:"phone" validate:"required,min=5,max=30"`
	IsDefault  bool   `json:"is_default"`
}

// UpdateAddressRequest - частичное обновление адреса
type UpdateAddressRequest struct {
	FullName   *string `json:"full_name" validate:"omitempty,min=2,max=150"`
	Street     *string `json:"street" validate:"omitempty,min=2,max=200"`
	City       *string `json:"city" validate:"omitempty,min=2,max=100"`
	PostalCode *string `json:"postal_code" validate:"omitempty,min=2,max=20"`
	Phone      *string `json:"phone" validate:"omitempty,min=5,max=30"`
	IsDefault  *bool   `json:"is_default"`
}

// CreateCategoryRequest - создание категории (админ)
// Кириллическое имя заполняется транслитерацией, если не передано
type CreateCategoryRequest struct {
	Name     string     `json:"name" validate:"required,min=2,max=100"`
	Slug     string     `json:"slug" validate:"required,min=2,max=100"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// UpdateCategoryRequest - обновление категории (админ)
type UpdateCategoryRequest struct {
	Name     *string    `json:"name" validate:"omitempty,min=2,max=100"`
	Slug     *string    `json:"slug" validate:"omitempty,min=2,max=100"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// ErrorResponse - стандартный формат ошибки API
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный формат успешного ответа без данных
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
