package repository

import (
	"context"
	"errors"

	"knjizara/internal/app/bookstore/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository создает новый репозиторий заказов
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateWithItems создает заказ с позициями одной транзакцией
// Остатки перечитываются с блокировкой строк (SELECT ... FOR UPDATE):
// остаток мог измениться между добавлением в корзину и оформлением.
// Любая нехватка или отсутствующая книга отклоняет заказ целиком -
// частично заполненных заказов не бывает
func (r *orderRepository) CreateWithItems(ctx context.Context, order *entity.Order, items []entity.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			var book entity.Book
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Select("id", "stock").
				First(&book, "id = ?", item.BookID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrBookNotFound
				}
				return err
			}

			if book.Stock < item.Quantity {
				return ErrInsufficientStock
			}
		}

		if err := tx.Omit("Items", "Address").Create(order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}

		return tx.Create(&items).Error
	})
}

// GetByID получает заказ по ID без позиций
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	result := r.db.WithContext(ctx).First(&order, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, result.Error
	}

	return &order, nil
}

// GetWithItems получает заказ с позициями, книгами и адресом доставки
func (r *orderRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	result := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Book").
		Preload("Address").
		First(&order, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, result.Error
	}

	return &order, nil
}

// GetByUserID получает все заказы пользователя, новые первыми
func (r *orderRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Order, error) {
	var orders []entity.Order
	result := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Book").
		Preload("Address").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders)

	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

// ListBySeller получает страницу заказов, содержащих книги продавца
// Позиции в ответе отфильтрованы до книг этого продавца
func (r *orderRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, status entity.OrderStatus, offset, limit int) ([]entity.Order, int64, error) {
	sellerOrders := func(db *gorm.DB) *gorm.DB {
		db = db.Where(
			"EXISTS (SELECT 1 FROM order_items oi JOIN books b ON b.id = oi.book_id WHERE oi.order_id = orders.id AND b.seller_id = ?)",
			sellerID,
		)
		if status != "" {
			db = db.Where("orders.status = ?", status)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Order{}).Scopes(sellerOrders).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]entity.Order, 0)
	err := r.db.WithContext(ctx).Model(&entity.Order{}).
		Scopes(sellerOrders).
		Order("orders.created_at DESC, orders.id ASC").
		Offset(offset).
		Limit(limit).
		Preload("Items", "book_id IN (SELECT id FROM books WHERE seller_id = ?)", sellerID).
		Preload("Items.Book").
		Preload("Address").
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateStatus обновляет статус заказа и трек-номер
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.OrderStatus, trackingNumber string) error {
	updates := map[string]interface{}{"status": status}
	if trackingNumber != "" {
		updates["tracking_number"] = trackingNumber
	}

	result := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}
