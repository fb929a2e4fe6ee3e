package handler

import (
	"errors"
	"net/http"

	"knjizara/internal/app/bookstore/entity"
	"knjizara/internal/app/bookstore/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AddressHandler обрабатывает HTTP запросы адресов доставки
type AddressHandler struct {
	addressService *service.AddressService
	validator      *validator.Validate
}

// NewAddressHandler создает новый обработчик адресов
func NewAddressHandler(addressService *service.AddressService) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
		validator:      validator.New(),
	}
}

// CreateAddress обрабатывает POST /addresses
func (h *AddressHandler) CreateAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req entity.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	address, err := h.addressService.CreateAddress(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create address"})
		return
	}

	c.JSON(http.StatusCreated, address)
}

// GetUserAddresses обрабатывает GET /addresses
func (h *AddressHandler) GetUserAddresses(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	addresses, err := h.addressService.GetUserAddresses(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get addresses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

// UpdateAddress обрабатывает PUT /addresses/{id}
func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	addressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address ID"})
		return
	}

	var req entity.UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	address, err := h.addressService.UpdateAddress(c.Request.Context(), userID, addressID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAddressNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update address"})
		}
		return
	}

	c.JSON(http.StatusOK, address)
}

// SetDefaultAddress обрабатывает POST /addresses/{id}/default
func (h *AddressHandler) SetDefaultAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	addressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address ID"})
		return
	}

	if err := h.addressService.SetDefaultAddress(c.Request.Context(), userID, addressID); err != nil {
		switch {
		case errors.Is(err, service.ErrAddressNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set default address"})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Default address updated"})
}

// DeleteAddress обрабатывает DELETE /addresses/{id}
func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	addressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address ID"})
		return
	}

	if err := h.addressService.DeleteAddress(c.Request.Context(), userID, addressID); err != nil {
		switch {
		case errors.Is(err, service.ErrAddressNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete address"})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Address deleted"})
}
