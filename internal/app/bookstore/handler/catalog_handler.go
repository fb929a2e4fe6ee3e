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

// CatalogHandler обрабатывает HTTP запросы каталога с использованием Gin
type CatalogHandler struct {
	catalogService *service.CatalogService
	validator      *validator.Validate
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		validator:      validator.New(),
	}
}

// ListBooks обрабатывает GET /books
// Каталожный запрос: поиск, фасеты, сортировка, пагинация
func (h *CatalogHandler) ListBooks(c *gin.Context) {
	query, err := parseListBooksQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.validator.Struct(query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	response, err := h.catalogService.ListBooks(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list books"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetBook обрабатывает GET /books/{id}
func (h *CatalogHandler) GetBook(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	book, err := h.catalogService.GetBook(c.Request.Context(), bookID)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get book"})
		return
	}

	c.JSON(http.StatusOK, book)
}

// UpdateBookFlags обрабатывает PATCH /books/{id}/flags (только admin)
// Кураторские флаги витрины: featured, bestseller
func (h *CatalogHandler) UpdateBookFlags(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	var req entity.UpdateBookFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	book, err := h.catalogService.UpdateBookFlags(c.Request.Context(), bookID, &req)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update book flags"})
		return
	}

	c.JSON(http.StatusOK, book)
}

// GetAllCategories обрабатывает GET /categories
func (h *CatalogHandler) GetAllCategories(c *gin.Context) {
	categories, err := h.catalogService.GetAllCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory обрабатывает POST /categories (только admin)
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req entity.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

// UpdateCategory обрабатывает PUT /categories/{id} (только admin)
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	var req entity.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), categoryID, &req)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory обрабатывает DELETE /categories/{id} (только admin)
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	if err := h.catalogService.DeleteCategory(c.Request.Context(), categoryID); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Category deleted"})
}

// parseListBooksQuery разбирает query-параметры каталожного запроса
// Gin не умеет биндить указатели на UUID из query string, поэтому
// параметры разбираются явно
func parseListBooksQuery(c *gin.Context) (entity.ListBooksQuery, error) {
	var query entity.ListBooksQuery

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return query, errors.New("invalid page parameter")
		}
		query.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return query, errors.New("invalid limit parameter")
		}
		query.Limit = limit
	}

	query.Search = c.Query("search")
	query.SortBy = c.Query("sort_by")
	query.Condition = entity.BookCondition(c.Query("condition"))
	query.Binding = entity.BookBinding(c.Query("binding"))
	query.SellerType = entity.SellerType(c.Query("seller_type"))
	query.Status = entity.ListingStatus(c.Query("status"))

	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return query, errors.New("invalid category_id parameter")
		}
		query.CategoryID = &id
	}
	if raw := c.Query("seller_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return query, errors.New("invalid seller_id parameter")
		}
		query.SellerID = &id
	}
	if raw := c.Query("min_price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return query, errors.New("invalid min_price parameter")
		}
		query.MinPrice = &price
	}
	if raw := c.Query("max_price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return query, errors.New("invalid max_price parameter")
		}
		query.MaxPrice = &price
	}
	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return query, errors.New("invalid featured parameter")
		}
		query.Featured = &featured
	}
	if raw := c.Query("bestseller"); raw != "" {
		bestseller, err := strconv.ParseBool(raw)
		if err != nil {
			return query, errors.New("invalid bestseller parameter")
		}
		query.Bestseller = &bestseller
	}

	return query, nil
}
