package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"knjizara/internal/app/bookstore/entity"
	"knjizara/internal/app/bookstore/repository"
	"knjizara/internal/app/bookstore/repository/mocks"
	"knjizara/internal/app/bookstore/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// ===================== ListBooks Handler Tests =====================

func TestListBooksHandler_Success(t *testing.T) {
	router := setupTestRouter()

	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	sellerID := uuid.New()
	books := []entity.Book{
		{ID: uuid.New(), Title: "Seobe", Author: "Miloš Crnjanski", Price: 900, Status: entity.StatusActive, SellerID: sellerID},
	}
	bookRepo.On("List", mock.Anything, mock.MatchedBy(func(f repository.BookFilter) bool {
		return f.Status == entity.StatusActive && f.Limit == 20
	})).Return(books, int64(1), nil)

	catalogService := service.NewCatalogService(bookRepo, categoryRepo, cache)
	h := NewCatalogHandler(catalogService)
	router.GET("/books", h.ListBooks)

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp entity.BookListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	assert.Len(t, resp.Books, 1)
	assert.Equal(t, "Seobe", resp.Books[0].Title)
}

func TestListBooksHandler_FiltersPassedThrough(t *testing.T) {
	router := setupTestRouter()

	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	categoryID := uuid.New()
	bookRepo.On("List", mock.Anything, mock.MatchedBy(func(f repository.BookFilter) bool {
		return f.Search == "Andrić" &&
			f.CategoryID != nil && *f.CategoryID == categoryID &&
			f.MinPrice != nil && *f.MinPrice == 500 &&
			f.Condition == entity.ConditionGood &&
			f.Featured != nil && *f.Featured &&
			f.SortBy == entity.SortPriceAsc
	})).Return([]entity.Book{}, int64(0), nil)

	catalogService := service.NewCatalogService(bookRepo, categoryRepo, cache)
	h := NewCatalogHandler(catalogService)
	router.GET("/books", h.ListBooks)

	url := "/books?search=Andri%C4%87&category_id=" + categoryID.String() +
		"&min_price=500&condition=GOOD&featured=true&sort_by=price_asc"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	bookRepo.AssertExpectations(t)
}

func TestListBooksHandler_InvalidCategoryID(t *testing.T) {
	router := setupTestRouter()

	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	catalogService := service.NewCatalogService(bookRepo, categoryRepo, cache)
	h := NewCatalogHandler(catalogService)
	router.GET("/books", h.ListBooks)

	req := httptest.NewRequest(http.MethodGet, "/books?category_id=not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	bookRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListBooksHandler_InvalidSortRejected(t *testing.T) {
	router := setupTestRouter()

	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	catalogService := service.NewCatalogService(bookRepo, categoryRepo, cache)
	h := NewCatalogHandler(catalogService)
	router.GET("/books", h.ListBooks)

	req := httptest.NewRequest(http.MethodGet, "/books?sort_by=rating", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListBooksHandler_InvalidFeaturedRejected(t *testing.T) {
	router := setupTestRouter()

	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	catalogService := service.NewCatalogService(bookRepo, categoryRepo, cache)
	h := NewCatalogHandler(catalogService)
	router.GET("/books", h.ListBooks)

	req := httptest.NewRequest(http.MethodGet, "/books?featured=da", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	bookRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

// ===================== GetBook Handler Tests =====================

func TestGetBookHandler_NotFound(t *testing.T) {
	router := setupTestRouter()

	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	id := uuid.New()
	bookRepo.On("GetByID", mock.Anything, id).Return(nil, repository.ErrBookNotFound)

	catalogService := service.NewCatalogService(bookRepo, categoryRepo, cache)
	h := NewCatalogHandler(catalogService)
	router.GET("/books/:id", h.GetBook)

	req := httptest.NewRequest(http.MethodGet, "/books/"+id.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBookHandler_InvalidID(t *testing.T) {
	router := setupTestRouter()

	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	catalogService := service.NewCatalogService(bookRepo, categoryRepo, cache)
	h := NewCatalogHandler(catalogService)
	router.GET("/books/:id", h.GetBook)

	req := httptest.NewRequest(http.MethodGet, "/books/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ===================== Categories Handler Tests =====================

func TestGetAllCategoriesHandler_Success(t *testing.T) {
	router := setupTestRouter()

	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	categories := []entity.Category{
		{ID: uuid.New(), Name: "Beletristika", Slug: "beletristika"},
	}
	cache.On("GetCategories", mock.Anything).Return(categories, nil)

	catalogService := service.NewCatalogService(bookRepo, categoryRepo, cache)
	h := NewCatalogHandler(catalogService)
	router.GET("/categories", h.GetAllCategories)

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "beletristika")
}
