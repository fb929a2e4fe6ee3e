package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"knjizara/internal/app/bookstore/config"
	"knjizara/internal/app/bookstore/entity"
	"knjizara/internal/app/bookstore/repository/mocks"
	"knjizara/internal/app/bookstore/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestOrderHandler(
	orderRepo *mocks.MockOrderRepository,
	bookRepo *mocks.MockBookRepository,
	addressRepo *mocks.MockAddressRepository,
	sellerRepo *mocks.MockSellerRepository,
	producer *mocks.MockMessagePublisher,
) *OrderHandler {
	pricing := service.NewPricingCalculator(config.ShippingConfig{
		FreeShippingThreshold: 3000,
		StandardShippingCost:  350,
	})
	orderService := service.NewOrderService(orderRepo, bookRepo, addressRepo, sellerRepo, pricing, producer)
	return NewOrderHandler(orderService)
}

// authAs эмулирует Authenticate middleware в тестах
func authAs(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role_name", role)
		c.Next()
	}
}

// ===================== QuoteOrder Handler Tests =====================

func TestQuoteOrderHandler_Success(t *testing.T) {
	router := setupTestRouter()

	orderRepo := new(mocks.MockOrderRepository)
	bookRepo := new(mocks.MockBookRepository)
	addressRepo := new(mocks.MockAddressRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	producer := new(mocks.MockMessagePublisher)

	book := &entity.Book{
		ID:     uuid.New(),
		Title:  "Seobe",
		Price:  1200,
		Stock:  5,
		Status: entity.StatusActive,
	}
	bookRepo.On("GetByID", mock.Anything, book.ID).Return(book, nil)

	h := newTestOrderHandler(orderRepo, bookRepo, addressRepo, sellerRepo, producer)
	router.POST("/orders/quote", h.QuoteOrder)

	body, _ := json.Marshal(entity.QuoteOrderRequest{
		Items: []entity.OrderItemRequest{{BookID: book.ID, Quantity: 1}},
	})
	req := httptest.NewRequest(http.MethodPost, "/orders/quote", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var totals entity.OrderTotals
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &totals))
	assert.Equal(t, 1200.0, totals.Subtotal)
	assert.Equal(t, 350.0, totals.ShippingCost)
	assert.Equal(t, 1550.0, totals.Total)
}

func TestQuoteOrderHandler_EmptyItems(t *testing.T) {
	router := setupTestRouter()

	orderRepo := new(mocks.MockOrderRepository)
	bookRepo := new(mocks.MockBookRepository)
	addressRepo := new(mocks.MockAddressRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	producer := new(mocks.MockMessagePublisher)

	h := newTestOrderHandler(orderRepo, bookRepo, addressRepo, sellerRepo, producer)
	router.POST("/orders/quote", h.QuoteOrder)

	req := httptest.NewRequest(http.MethodPost, "/orders/quote", bytes.NewReader([]byte(`{"items":[]}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ===================== CreateOrder Handler Tests =====================

func TestCreateOrderHandler_Success(t *testing.T) {
	router := setupTestRouter()

	orderRepo := new(mocks.MockOrderRepository)
	bookRepo := new(mocks.MockBookRepository)
	addressRepo := new(mocks.MockAddressRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	producer := new(mocks.MockMessagePublisher)

	userID := uuid.New()
	address := &entity.Address{ID: uuid.New(), UserID: userID, City: "Beograd"}
	book := &entity.Book{ID: uuid.New(), Price: 1600, Stock: 3, Status: entity.StatusActive}

	addressRepo.On("GetByID", mock.Anything, address.ID).Return(address, nil)
	bookRepo.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	orderRepo.On("CreateWithItems", mock.Anything, mock.AnythingOfType("*entity.Order"), mock.AnythingOfType("[]entity.OrderItem")).Return(nil)
	producer.On("PublishMessage", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	h := newTestOrderHandler(orderRepo, bookRepo, addressRepo, sellerRepo, producer)
	router.POST("/orders", authAs(userID, "user"), h.CreateOrder)

	body, _ := json.Marshal(entity.CreateOrderRequest{
		AddressID:     address.ID,
		Items:         []entity.OrderItemRequest{{BookID: book.ID, Quantity: 2}},
		PaymentMethod: entity.PaymentCashOnDelivery,
	})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var order entity.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	// 3200 >= 3000, доставка бесплатная
	assert.Equal(t, 3200.0, order.Subtotal)
	assert.Equal(t, 0.0, order.ShippingCost)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
}

func TestCreateOrderHandler_MissingPaymentMethod(t *testing.T) {
	router := setupTestRouter()

	orderRepo := new(mocks.MockOrderRepository)
	bookRepo := new(mocks.MockBookRepository)
	addressRepo := new(mocks.MockAddressRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	producer := new(mocks.MockMessagePublisher)

	h := newTestOrderHandler(orderRepo, bookRepo, addressRepo, sellerRepo, producer)
	userID := uuid.New()
	router.POST("/orders", authAs(userID, "user"), h.CreateOrder)

	body, _ := json.Marshal(entity.CreateOrderRequest{
		AddressID: uuid.New(),
		Items:     []entity.OrderItemRequest{{BookID: uuid.New(), Quantity: 1}},
	})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	orderRepo.AssertNotCalled(t, "CreateWithItems", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrderHandler_Unauthenticated(t *testing.T) {
	router := setupTestRouter()

	orderRepo := new(mocks.MockOrderRepository)
	bookRepo := new(mocks.MockBookRepository)
	addressRepo := new(mocks.MockAddressRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	producer := new(mocks.MockMessagePublisher)

	h := newTestOrderHandler(orderRepo, bookRepo, addressRepo, sellerRepo, producer)
	router.POST("/orders", h.CreateOrder) // без auth middleware

	body, _ := json.Marshal(entity.CreateOrderRequest{
		AddressID:     uuid.New(),
		Items:         []entity.OrderItemRequest{{BookID: uuid.New(), Quantity: 1}},
		PaymentMethod: entity.PaymentCard,
	})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ===================== UpdateOrderStatus Handler Tests =====================

func TestUpdateOrderStatusHandler_InvalidTransition(t *testing.T) {
	router := setupTestRouter()

	orderRepo := new(mocks.MockOrderRepository)
	bookRepo := new(mocks.MockBookRepository)
	addressRepo := new(mocks.MockAddressRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	producer := new(mocks.MockMessagePublisher)

	order := &entity.Order{ID: uuid.New(), UserID: uuid.New(), Status: entity.OrderStatusCancelled}
	orderRepo.On("GetWithItems", mock.Anything, order.ID).Return(order, nil)

	h := newTestOrderHandler(orderRepo, bookRepo, addressRepo, sellerRepo, producer)
	adminID := uuid.New()
	router.PATCH("/orders/:id/status", authAs(adminID, roleAdmin), h.UpdateOrderStatus)

	body, _ := json.Marshal(entity.UpdateOrderStatusRequest{Status: entity.OrderStatusShipped})
	req := httptest.NewRequest(http.MethodPatch, "/orders/"+order.ID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid status transition")
}
