package entity

import (
	"time"

	"github.com/google/uuid"
)

// BookCondition представляет состояние книги (новая или б/у)
type BookCondition string

const (
	ConditionNew        BookCondition = "NEW"
	ConditionLikeNew    BookCondition = "LIKE_NEW"
	ConditionVeryGood   BookCondition = "VERY_GOOD"
	ConditionGood       BookCondition = "GOOD"
	ConditionAcceptable BookCondition = "ACCEPTABLE"
)

// ListingStatus представляет статус объявления в каталоге
type ListingStatus string

const (
	StatusActive  ListingStatus = "ACTIVE"  // Видно в каталоге
	StatusPaused  ListingStatus = "PAUSED"  // Снято продавцом с публикации
	StatusSold    ListingStatus = "SOLD"    // Продано (явное действие продавца)
	StatusExpired ListingStatus = "EXPIRED" // Устарело (помечает фоновый воркер)
)

// BookBinding представляет тип переплета
type BookBinding string

const (
	BindingHardcover BookBinding = "HARDCOVER"
	BindingSoftcover BookBinding = "SOFTCOVER"
)

// Book представляет книгу в каталоге
// Текстовые поля хранятся парами: латиница + кириллица,
// пары заполняются автоматически транслитерацией при создании объявления
type Book struct {
	ID                  uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Title               string         `json:"title" gorm:"type:varchar(300);not null"`
	TitleCyrillic       string         `json:"title_cyrillic" gorm:"type:varchar(300)"`
	Author              string         `json:"author" gorm:"type:varchar(200);not null"`
	AuthorCyrillic      string         `json:"author_cyrillic" gorm:"type:varchar(200)"`
	Description         string         `json:"description" gorm:"type:text"`
	DescriptionCyrillic string         `json:"description_cyrillic" gorm:"type:text"`
	Price               float64        `json:"price" gorm:"type:decimal(10,2);not null;check:price > 0"` // Цена в RSD
	DiscountPrice       *float64       `json:"discount_price,omitempty" gorm:"type:decimal(10,2)"`       // Акционная цена, должна быть ниже Price
	ISBN                string         `json:"isbn" gorm:"type:varchar(50);uniqueIndex;not null"`        // Для пользовательских объявлений генерируется синтетический
	Stock               int            `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	Condition           BookCondition  `json:"condition" gorm:"type:varchar(20);not null;default:'NEW'"`
	Status              ListingStatus  `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Binding             BookBinding    `json:"binding" gorm:"type:varchar(20);not null;default:'SOFTCOVER'"`
	Publisher           string         `json:"publisher" gorm:"type:varchar(200)"`
	PublishYear         int            `json:"publish_year"`
	PageCount           int            `json:"page_count"`
	Language            string         `json:"language" gorm:"type:varchar(50)"`
	CoverImage          string         `json:"cover_image" gorm:"type:text"`
	IsNegotiable        bool           `json:"is_negotiable" gorm:"not null;default:false"`
	Featured            bool           `json:"featured" gorm:"not null;default:false"`
	Bestseller          bool           `json:"bestseller" gorm:"not null;default:false"`
	SellerID            uuid.UUID      `json:"seller_id" gorm:"type:uuid;not null;index"`
	Seller              *SellerProfile `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Categories          []Category     `json:"categories,omitempty" gorm:"many2many:book_categories"`
	CreatedAt           time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt           time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы для GORM
func (Book) TableName() string {
	return "books"
}

// EffectivePrice возвращает цену для покупателя:
// акционная цена, если задана и ниже базовой, иначе базовая
func (b *Book) EffectivePrice() float64 {
	if b.DiscountPrice != nil && *b.DiscountPrice > 0 && *b.DiscountPrice < b.Price {
		return *b.DiscountPrice
	}
	return b.Price
}

// Category представляет категорию каталога
// Иерархия через ParentID; книга может принадлежать нескольким категориям
type Category struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string     `json:"name" gorm:"type:varchar(100);not null"`
	NameCyrillic string     `json:"name_cyrillic" gorm:"type:varchar(100)"`
	Slug         string     `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	ParentID     *uuid.UUID `json:"parent_id,omitempty" gorm:"type:uuid"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (Category) TableName() string {
	return "categories"
}

// SellerType представляет тип продавца
type SellerType string

const (
	SellerPrivate  SellerType = "PRIVATE"  // Частное лицо
	SellerBusiness SellerType = "BUSINESS" // Юридическое лицо (книжный магазин, издательство)
)

// SellerProfile представляет профиль продавца
// Создается автоматически при первом объявлении пользователя
type SellerProfile struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Type        SellerType `json:"type" gorm:"type:varchar(20);not null;default:'PRIVATE'"`
	DisplayName string     `json:"display_name" gorm:"type:varchar(100);not null"`
	Phone       string     `json:"phone" gorm:"type:varchar(30)"`
	City        string     `json:"city" gorm:"type:varchar(100)"`
	IsVerified  bool       `json:"is_verified" gorm:"not null;default:false"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (SellerProfile) TableName() string {
	return "seller_profiles"
}

// Address представляет адрес доставки пользователя
// Инвариант: у пользователя не более одного адреса с IsDefault=true,
// смена дефолтного адреса выполняется в одной транзакции
type Address struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	FullName   string    `json:"full_name" gorm:"type:varchar(150);not null"`
	Street     string    `json:"street" gorm:"type:varchar(200);not null"`
	City       string    `json:"city" gorm:"type:varchar(100);not null"`
	PostalCode string    `json:"postal_code" gorm:"type:varchar(20);not null"`
	Phone      string    `json:"phone" gorm:"type:varchar(30);not null"`
	IsDefault  bool      `json:"is_default" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (Address) TableName() string {
	return "addresses"
}

// OrderStatus представляет статусы заказа
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"    // Ожидает обработки
	OrderStatusProcessing OrderStatus = "PROCESSING" // В обработке у продавца
	OrderStatusShipped    OrderStatus = "SHIPPED"    // Отправлен
	OrderStatusDelivered  OrderStatus = "DELIVERED"  // Доставлен (финальный)
	OrderStatusCancelled  OrderStatus = "CANCELLED"  // Отменен (финальный)
)

// PaymentMethod представляет способ оплаты
// Платежный шлюз не интегрирован - способ только фиксируется в заказе
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentCard           PaymentMethod = "CARD"
)

// Order представляет заказ
// Инвариант: Total == Subtotal + ShippingCost,
// Subtotal == сумма Price*Quantity по позициям; пересчитывается
// только при создании заказа
type Order struct {
	ID             uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	AddressID      uuid.UUID     `json:"address_id" gorm:"type:uuid;not null"`
	Address        *Address      `json:"address,omitempty" gorm:"foreignKey:AddressID"`
	Subtotal       float64       `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	ShippingCost   float64       `json:"shipping_cost" gorm:"type:decimal(10,2);not null"`
	Total          float64       `json:"total" gorm:"type:decimal(10,2);not null"`
	Status         OrderStatus   `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	PaymentMethod  PaymentMethod `json:"payment_method" gorm:"type:varchar(30);not null"`
	TrackingNumber string        `json:"tracking_number,omitempty" gorm:"type:varchar(100)"`
	CreatedAt      time.Time     `json:"created_at" gorm:"autoCreateTime"`
	Items          []OrderItem   `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName указывает имя таблицы для GORM
func (Order) TableName() string {
	return "orders"
}

// OrderItem представляет позицию заказа
// Price - цена за единицу, замороженная в момент создания заказа:
// последующие изменения цены книги на нее не влияют
type OrderItem struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID  uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	BookID   uuid.UUID `json:"book_id" gorm:"type:uuid;not null"`
	Book     *Book     `json:"book,omitempty" gorm:"foreignKey:BookID"`
	Quantity int       `json:"quantity" gorm:"not null;check:quantity > 0"`
	Price    float64   `json:"price" gorm:"type:decimal(10,2);not null"`
}

// TableName указывает имя таблицы для GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// WishlistItem представляет книгу в списке желаний пользователя
// Пара (UserID, BookID) уникальна - повторное добавление идемпотентно
type WishlistItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_book"`
	BookID    uuid.UUID `json:"book_id" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_book"`
	Book      *Book     `json:"book,omitempty" gorm:"foreignKey:BookID"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// BookEvent представляет событие изменения объявления для Kafka
type BookEvent struct {
	EventType string        `json:"event_type"` // BOOK_CREATED, BOOK_UPDATED, BOOK_STATUS_CHANGED
	BookID    uuid.UUID     `json:"book_id"`
	SellerID  uuid.UUID     `json:"seller_id"`
	Title     string        `json:"title"`
	Price     float64       `json:"price"`
	Status    ListingStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

// OrderEvent представляет событие изменения заказа для Kafka
type OrderEvent struct {
	EventType  string      `json:"event_type"` // ORDER_CREATED, ORDER_UPDATED
	OrderID    uuid.UUID   `json:"order_id"`
	UserID     uuid.UUID   `json:"user_id"`
	Total      float64     `json:"total"`
	Status     OrderStatus `json:"status"`
	ItemsCount int         `json:"items_count"`
	Timestamp  time.Time   `json:"timestamp"`
}
