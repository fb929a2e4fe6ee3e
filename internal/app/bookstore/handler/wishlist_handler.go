package handler

import (
	"errors"
	"net/http"

	"knjizara/internal/app/bookstore/entity"
	"knjizara/internal/app/bookstore/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WishlistHandler обрабатывает HTTP запросы списка желаний
type WishlistHandler struct {
	wishlistService *service.WishlistService
}

// NewWishlistHandler создает новый обработчик списка желаний
func NewWishlistHandler(wishlistService *service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// AddToWishlist обрабатывает POST /wishlist/{bookId}
func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookID, err := uuid.Parse(c.Param("bookId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	item, err := h.wishlistService.AddToWishlist(c.Request.Context(), userID, bookID)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to wishlist"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// GetWishlist обрабатывает GET /wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	items, err := h.wishlistService.GetWishlist(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// IsInWishlist обрабатывает GET /wishlist/{bookId}
func (h *WishlistHandler) IsInWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookID, err := uuid.Parse(c.Param("bookId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	inWishlist, err := h.wishlistService.IsInWishlist(c.Request.Context(), userID, bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"in_wishlist": inWishlist})
}

// RemoveFromWishlist обрабатывает DELETE /wishlist/{bookId}
func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookID, err := uuid.Parse(c.Param("bookId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	if err := h.wishlistService.RemoveFromWishlist(c.Request.Context(), userID, bookID); err != nil {
		if errors.Is(err, service.ErrNotInWishlist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book is not in wishlist"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove from wishlist"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Removed from wishlist"})
}
