package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"knjizara/internal/app/bookstore/entity"
	"knjizara/internal/app/bookstore/repository"
	"knjizara/internal/app/bookstore/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Хелперы для создания тестовых данных

func newTestCategory() *entity.Category {
	return &entity.Category{
		ID:        uuid.New(),
		Name:      "Beletristika",
		Slug:      "beletristika",
		CreatedAt: time.Now(),
	}
}

func newTestBook(sellerID uuid.UUID) *entity.Book {
	return &entity.Book{
		ID:        uuid.New(),
		Title:     "Na Drini ćuprija",
		Author:    "Ivo Andrić",
		Price:     1200,
		ISBN:      "978-86-521-0001-1",
		Stock:     3,
		Condition: entity.ConditionGood,
		Status:    entity.StatusActive,
		Binding:   entity.BindingSoftcover,
		SellerID:  sellerID,
		CreatedAt: time.Now(),
	}
}

// ==================== ListBooks Tests ====================

func TestCatalogService_ListBooks_Defaults(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	books := []entity.Book{*newTestBook(uuid.New())}
	bookRepo.On("List", ctx, mock.MatchedBy(func(f repository.BookFilter) bool {
		return f.Offset == 0 && f.Limit == 20 && f.Status == entity.StatusActive
	})).Return(books, int64(1), nil)

	service := NewCatalogService(bookRepo, categoryRepo, cache)

	// Act: пустой запрос получает умолчания page=1, limit=20, ACTIVE
	resp, err := service.ListBooks(ctx, entity.ListBooksQuery{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, 1, resp.TotalPages)
	assert.Len(t, resp.Books, 1)

	bookRepo.AssertExpectations(t)
}

func TestCatalogService_ListBooks_Pagination(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	bookRepo.On("List", ctx, mock.MatchedBy(func(f repository.BookFilter) bool {
		return f.Offset == 20 && f.Limit == 10
	})).Return([]entity.Book{}, int64(45), nil)

	service := NewCatalogService(bookRepo, categoryRepo, cache)

	// Act
	resp, err := service.ListBooks(ctx, entity.ListBooksQuery{Page: 3, Limit: 10})

	// Assert: totalPages = ceil(45/10) = 5
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Page)
	assert.Equal(t, 5, resp.TotalPages)
}

func TestCatalogService_ListBooks_EmptyResult(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	bookRepo.On("List", ctx, mock.AnythingOfType("repository.BookFilter")).
		Return([]entity.Book{}, int64(0), nil)

	service := NewCatalogService(bookRepo, categoryRepo, cache)

	// Act: пустой результат - валидная страница, не ошибка
	resp, err := service.ListBooks(ctx, entity.ListBooksQuery{Search: "nepostojeca knjiga"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Total)
	assert.Equal(t, 0, resp.TotalPages)
	assert.Empty(t, resp.Books)
}

func TestCatalogService_ListBooks_FeaturedAndBestsellerFacets(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	bookRepo.On("List", ctx, mock.MatchedBy(func(f repository.BookFilter) bool {
		return f.Featured != nil && *f.Featured &&
			f.Bestseller != nil && !*f.Bestseller
	})).Return([]entity.Book{*newTestBook(uuid.New())}, int64(1), nil)

	service := NewCatalogService(bookRepo, categoryRepo, cache)

	featured := true
	bestseller := false

	// Act: витринные фасеты доходят до репозитория как есть
	resp, err := service.ListBooks(ctx, entity.ListBooksQuery{
		Featured:   &featured,
		Bestseller: &bestseller,
	})

	// Assert
	require.NoError(t, err)
	assert.Len(t, resp.Books, 1)
	bookRepo.AssertExpectations(t)
}

// ==================== UpdateBookFlags Tests ====================

func TestCatalogService_UpdateBookFlags_PartialUpdate(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	book := newTestBook(uuid.New())
	book.Bestseller = true

	bookRepo.On("GetByID", ctx, book.ID).Return(book, nil)
	bookRepo.On("Update", ctx, mock.MatchedBy(func(b *entity.Book) bool {
		// Featured поднят, Bestseller не тронут
		return b.Featured && b.Bestseller
	})).Return(nil)

	service := NewCatalogService(bookRepo, categoryRepo, cache)

	featured := true

	// Act
	updated, err := service.UpdateBookFlags(ctx, book.ID, &entity.UpdateBookFlagsRequest{Featured: &featured})

	// Assert
	require.NoError(t, err)
	assert.True(t, updated.Featured)
	assert.True(t, updated.Bestseller)
	bookRepo.AssertExpectations(t)
}

func TestCatalogService_UpdateBookFlags_NotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	id := uuid.New()
	bookRepo.On("GetByID", ctx, id).Return(nil, repository.ErrBookNotFound)

	service := NewCatalogService(bookRepo, categoryRepo, cache)

	featured := true

	// Act
	book, err := service.UpdateBookFlags(ctx, id, &entity.UpdateBookFlagsRequest{Featured: &featured})

	// Assert
	assert.Nil(t, book)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestCatalogService_GetBook_NotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	id := uuid.New()
	bookRepo.On("GetByID", ctx, id).Return(nil, repository.ErrBookNotFound)

	service := NewCatalogService(bookRepo, categoryRepo, cache)

	// Act
	book, err := service.GetBook(ctx, id)

	// Assert
	assert.Nil(t, book)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

// ==================== Category Tests ====================

func TestCatalogService_GetAllCategories_CacheHit(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	cached := []entity.Category{*newTestCategory()}
	cache.On("GetCategories", ctx).Return(cached, nil)

	service := NewCatalogService(bookRepo, categoryRepo, cache)

	// Act
	categories, err := service.GetAllCategories(ctx)

	// Assert: БД не трогаем
	require.NoError(t, err)
	assert.Len(t, categories, 1)
	categoryRepo.AssertNotCalled(t, "GetAll", mock.Anything)
}

func TestCatalogService_GetAllCategories_CacheMiss(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	fromDB := []entity.Category{*newTestCategory(), *newTestCategory()}
	cache.On("GetCategories", ctx).Return(nil, errors.New("cache miss"))
	categoryRepo.On("GetAll", ctx).Return(fromDB, nil)
	cache.On("SetCategories", ctx, fromDB, time.Hour).Return(nil)

	service := NewCatalogService(bookRepo, categoryRepo, cache)

	// Act
	categories, err := service.GetAllCategories(ctx)

	// Assert
	require.NoError(t, err)
	assert.Len(t, categories, 2)
	cache.AssertExpectations(t)
	categoryRepo.AssertExpectations(t)
}

func TestCatalogService_CreateCategory_Transliterates(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	categoryRepo.On("Create", ctx, mock.AnythingOfType("*entity.Category")).Return(nil)
	cache.On("DeleteCategories", ctx).Return(nil)

	service := NewCatalogService(bookRepo, categoryRepo, cache)

	req := &entity.CreateCategoryRequest{
		Name: "Poezija",
		Slug: "poezija",
	}

	// Act
	category, err := service.CreateCategory(ctx, req)

	// Assert: кириллическая пара заполнена транслитерацией
	require.NoError(t, err)
	assert.Equal(t, "Poezija", category.Name)
	assert.Equal(t, "Поезија", category.NameCyrillic)
	assert.NotEqual(t, uuid.Nil, category.ID)

	categoryRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCatalogService_DeleteCategory_InvalidatesCache(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	id := uuid.New()
	categoryRepo.On("Delete", ctx, id).Return(nil)
	cache.On("DeleteCategories", ctx).Return(nil)

	service := NewCatalogService(bookRepo, categoryRepo, cache)

	// Act
	err := service.DeleteCategory(ctx, id)

	// Assert
	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestCatalogService_UpdateCategory_NotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	cache := new(mocks.MockCategoryCache)

	id := uuid.New()
	categoryRepo.On("GetByID", ctx, id).Return(nil, repository.ErrCategoryNotFound)

	service := NewCatalogService(bookRepo, categoryRepo, cache)

	// Act
	name := "Istorija"
	category, err := service.UpdateCategory(ctx, id, &entity.UpdateCategoryRequest{Name: &name})

	// Assert
	assert.Nil(t, category)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}
