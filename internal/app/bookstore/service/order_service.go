package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"knjizara/internal/app/bookstore/entity"
	"knjizara/internal/app/bookstore/repository"
	"knjizara/internal/app/bookstore/util"
	"knjizara/pkg/logger"
	"knjizara/pkg/metrics"

	"github.com/google/uuid"
)

// orderStatusTransitions - допустимые переходы статуса заказа
// DELIVERED и CANCELLED финальны
var orderStatusTransitions = map[entity.OrderStatus][]entity.OrderStatus{
	entity.OrderStatusPending:    {entity.OrderStatusProcessing, entity.OrderStatusCancelled},
	entity.OrderStatusProcessing: {entity.OrderStatusShipped, entity.OrderStatusCancelled},
	entity.OrderStatusShipped:    {entity.OrderStatusDelivered},
	entity.OrderStatusDelivered:  {},
	entity.OrderStatusCancelled:  {},
}

// OrderService обрабатывает заказы: расчет стоимости, оформление,
// история и смена статуса продавцом
type OrderService struct {
	orderRepo   repository.OrderRepository
	bookRepo    repository.BookRepository
	addressRepo repository.AddressRepository
	sellerRepo  repository.SellerRepository
	pricing     *PricingCalculator
	producer    util.MessagePublisher
}

// NewOrderService создает новый сервис заказов
func NewOrderService(
	orderRepo repository.OrderRepository,
	bookRepo repository.BookRepository,
	addressRepo repository.AddressRepository,
	sellerRepo repository.SellerRepository,
	pricing *PricingCalculator,
	producer util.MessagePublisher,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		bookRepo:    bookRepo,
		addressRepo: addressRepo,
		sellerRepo:  sellerRepo,
		pricing:     pricing,
		producer:    producer,
	}
}

// QuoteOrder считает стоимость корзины без создания заказа
// Использует тот же калькулятор, что и CreateOrder: предпросмотр
// и итоговый заказ не могут разойтись в суммах
func (s *OrderService) QuoteOrder(ctx context.Context, req *entity.QuoteOrderRequest) (*entity.OrderTotals, error) {
	priced, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	totals, err := s.pricing.ComputeTotals(priced)
	if err != nil {
		return nil, err
	}

	return &totals, nil
}

// CreateOrder оформляет заказ
// 1. Проверяет, что адрес принадлежит пользователю
// 2. Загружает книги, проверяет остатки и фиксирует цены за единицу
// 3. Считает subtotal/доставку/итог
// 4. Сохраняет заказ с позициями в одной транзакции с повторной
//    проверкой остатков под блокировкой строк
// 5. Публикует событие ORDER_CREATED
// Остатки при оформлении не списываются - продажу подтверждает продавец
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *entity.CreateOrderRequest) (*entity.Order, error) {
	// 1. Адрес доставки
	address, err := s.addressRepo.GetByID(ctx, req.AddressID)
	if err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	if address.UserID != userID {
		return nil, ErrForbidden
	}

	// 2. Позиции: цена за единицу фиксируется сейчас
	priced, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	// 3. Суммы заказа
	totals, err := s.pricing.ComputeTotals(priced)
	if err != nil {
		return nil, err
	}

	// 4. Транзакционное сохранение
	orderID := uuid.New()
	items := make([]entity.OrderItem, 0, len(req.Items))
	for i, item := range req.Items {
		items = append(items, entity.OrderItem{
			ID:       uuid.New(),
			OrderID:  orderID,
			BookID:   item.BookID,
			Quantity: item.Quantity,
			Price:    priced[i].UnitPrice,
		})
	}

	order := &entity.Order{
		ID:            orderID,
		UserID:        userID,
		AddressID:     req.AddressID,
		Subtotal:      totals.Subtotal,
		ShippingCost:  totals.ShippingCost,
		Total:         totals.Total,
		Status:        entity.OrderStatusPending,
		PaymentMethod: req.PaymentMethod,
	}

	if err := s.orderRepo.CreateWithItems(ctx, order, items); err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			return nil, ErrBookNotFound
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, ErrInsufficientStock
		default:
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
	}
	order.Items = items

	// 5. Событие и метрика
	s.publishOrderEvent(ctx, "ORDER_CREATED", order)
	metrics.OrdersCreatedTotal.WithLabelValues("knjizara", string(req.PaymentMethod)).Inc()

	logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID.String()).
		Float64("total", order.Total).
		Msg("order created")

	return order, nil
}

// GetOrder возвращает заказ с позициями
// Доступен владельцу заказа или админу
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID, isAdmin bool) (*entity.Order, error) {
	order, err := s.orderRepo.GetWithItems(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if !isAdmin && order.UserID != userID {
		return nil, ErrForbidden
	}

	return order, nil
}

// GetUserOrders возвращает историю заказов пользователя
func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]entity.Order, error) {
	orders, err := s.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user orders: %w", err)
	}
	return orders, nil
}

// GetSellerOrders возвращает заказы, содержащие книги продавца
// В позициях каждого заказа остаются только книги этого продавца
func (s *OrderService) GetSellerOrders(ctx context.Context, userID uuid.UUID, query entity.SellerOrdersQuery) (*entity.OrderListResponse, error) {
	seller, err := s.sellerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSellerNotFound) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to get seller profile: %w", err)
	}

	page := query.Page
	if page < 1 {
		page = defaultPage
	}
	limit := query.Limit
	if limit < 1 {
		limit = defaultLimit
	}

	orders, total, err := s.orderRepo.ListBySeller(ctx, seller.ID, query.Status, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller orders: %w", err)
	}

	return &entity.OrderListResponse{
		Orders:     orders,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}

// UpdateOrderStatus меняет статус заказа
// Переход проверяется по таблице допустимых переходов.
// Продавец меняет статус только заказов со своими книгами, админ - любых
func (s *OrderService) UpdateOrderStatus(ctx context.Context, userID, orderID uuid.UUID, req *entity.UpdateOrderStatusRequest, isAdmin bool) (*entity.Order, error) {
	order, err := s.orderRepo.GetWithItems(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if !isAdmin {
		if err := s.checkSellerOwnsOrderItems(ctx, userID, order); err != nil {
			return nil, err
		}
	}

	if !isValidTransition(order.Status, req.Status) {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, req.Status, req.TrackingNumber); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	order.Status = req.Status
	if req.TrackingNumber != "" {
		order.TrackingNumber = req.TrackingNumber
	}

	s.publishOrderEvent(ctx, "ORDER_UPDATED", order)

	logger.Info().
		Str("order_id", orderID.String()).
		Str("status", string(req.Status)).
		Msg("order status updated")

	return order, nil
}

// priceItems загружает книги корзины и фиксирует цены за единицу
// Проверяет, что объявление активно и остатка хватает.
// Это предварительная проверка для раннего отказа - решающая проверка
// выполняется в транзакции репозитория под блокировкой строк
func (s *OrderService) priceItems(ctx context.Context, items []entity.OrderItemRequest) ([]PricedItem, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	priced := make([]PricedItem, 0, len(items))
	for _, item := range items {
		book, err := s.bookRepo.GetByID(ctx, item.BookID)
		if err != nil {
			if errors.Is(err, repository.ErrBookNotFound) {
				return nil, ErrBookNotFound
			}
			return nil, fmt.Errorf("failed to get book: %w", err)
		}

		if book.Status != entity.StatusActive {
			return nil, ErrBookNotFound
		}
		if book.Stock < item.Quantity {
			return nil, ErrInsufficientStock
		}

		priced = append(priced, PricedItem{
			UnitPrice: book.EffectivePrice(),
			Quantity:  item.Quantity,
		})
	}

	return priced, nil
}

// checkSellerOwnsOrderItems проверяет, что хотя бы одна позиция
// заказа принадлежит продавцу
func (s *OrderService) checkSellerOwnsOrderItems(ctx context.Context, userID uuid.UUID, order *entity.Order) error {
	seller, err := s.sellerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSellerNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("failed to get seller profile: %w", err)
	}

	for _, item := range order.Items {
		book, err := s.bookRepo.GetByID(ctx, item.BookID)
		if err != nil {
			continue
		}
		if book.SellerID == seller.ID {
			return nil
		}
	}

	return ErrForbidden
}

// isValidTransition проверяет переход статуса по таблице
func isValidTransition(from, to entity.OrderStatus) bool {
	for _, allowed := range orderStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// publishOrderEvent отправляет событие заказа в Kafka
// Ошибка публикации логируется, но не прерывает основную операцию
func (s *OrderService) publishOrderEvent(ctx context.Context, eventType string, order *entity.Order) {
	event := entity.OrderEvent{
		EventType:  eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Total:      order.Total,
		Status:     order.Status,
		ItemsCount: len(order.Items),
		Timestamp:  time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal order event")
		return
	}

	if err := s.producer.PublishMessage(ctx, order.ID.String(), payload); err != nil {
		logger.Error().
			Err(err).
			Str("event_type", eventType).
			Str("order_id", order.ID.String()).
			Msg("failed to publish order event")
	}
}
