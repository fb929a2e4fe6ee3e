package handler

import (
	"errors"
	"net/http"
	"strconv"

	"knjizara/internal/app/bookstore/entity"
	"knjizara/internal/app/bookstore/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ListingHandler обрабатывает HTTP запросы объявлений с использованием Gin
type ListingHandler struct {
	listingService *service.ListingService
	validator      *validator.Validate
}

// NewListingHandler создает новый обработчик объявлений
func NewListingHandler(listingService *service.ListingService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		validator:      validator.New(),
	}
}

// CreateListing обрабатывает POST /listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req entity.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	book, err := h.listingService.CreateListing(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "One or more categories not found"})
		case errors.Is(err, service.ErrInvalidDiscountPrice):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Discount price must be lower than price"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
		}
		return
	}

	c.JSON(http.StatusCreated, book)
}

// UpdateListing обрабатывает PUT /listings/{id}
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	var req entity.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	book, err := h.listingService.UpdateListing(c.Request.Context(), userID, bookID, &req, isAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "One or more categories not found"})
		case errors.Is(err, service.ErrInvalidDiscountPrice):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Discount price must be lower than price"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update listing"})
		}
		return
	}

	c.JSON(http.StatusOK, book)
}

// DeleteListing обрабатывает DELETE /listings/{id}
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	if err := h.listingService.DeleteListing(c.Request.Context(), userID, bookID, isAdmin(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		case errors.Is(err, service.ErrBookOrdered):
			c.JSON(http.StatusConflict, gin.H{"error": "Book is referenced by orders and cannot be deleted"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete listing"})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Listing deleted"})
}

// ToggleStatus обрабатывает PATCH /listings/{id}/status
// Переключение ACTIVE <-> PAUSED
func (h *ListingHandler) ToggleStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	var req entity.ToggleListingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	book, err := h.listingService.ToggleStatus(c.Request.Context(), userID, bookID, req.Status, isAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update listing status"})
		}
		return
	}

	c.JSON(http.StatusOK, book)
}

// MarkAsSold обрабатывает POST /listings/{id}/sold
func (h *ListingHandler) MarkAsSold(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	book, err := h.listingService.MarkAsSold(c.Request.Context(), userID, bookID, isAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark listing as sold"})
		}
		return
	}

	c.JSON(http.StatusOK, book)
}

// GetMyListings обрабатывает GET /listings/my
func (h *ListingHandler) GetMyListings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var query entity.MyListingsQuery
	query.Status = entity.ListingStatus(c.Query("status"))
	if raw := c.Query("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			query.Page = page
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			query.Limit = limit
		}
	}

	if err := h.validator.Struct(query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	response, err := h.listingService.GetMyListings(c.Request.Context(), userID, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list seller books"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetSellerListings обрабатывает GET /sellers/{id}/books
// Публичная витрина продавца: только ACTIVE объявления
func (h *ListingHandler) GetSellerListings(c *gin.Context) {
	sellerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid seller ID"})
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	response, err := h.listingService.GetSellerListings(c.Request.Context(), sellerID, page, limit)
	if err != nil {
		if errors.Is(err, service.ErrSellerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Seller not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list seller books"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetSeller обрабатывает GET /sellers/{id}
func (h *ListingHandler) GetSeller(c *gin.Context) {
	sellerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid seller ID"})
		return
	}

	profile, err := h.listingService.GetSeller(c.Request.Context(), sellerID)
	if err != nil {
		if errors.Is(err, service.ErrSellerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Seller not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get seller"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RegisterSeller обрабатывает POST /sellers
func (h *ListingHandler) RegisterSeller(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req entity.RegisterSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	profile, err := h.listingService.RegisterSeller(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrAlreadySeller) {
			c.JSON(http.StatusConflict, gin.H{"error": "Seller profile already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register seller"})
		return
	}

	c.JSON(http.StatusCreated, profile)
}
