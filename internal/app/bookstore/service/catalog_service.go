package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"knjizara/internal/app/bookstore/entity"
	"knjizara/internal/app/bookstore/repository"
	"knjizara/internal/app/bookstore/util"
	"knjizara/pkg/logger"
	"knjizara/pkg/translit"

	"github.com/google/uuid"
)

const (
	defaultPage        = 1
	defaultLimit       = 20
	categoriesCacheTTL = time.Hour
)

// CatalogService обрабатывает каталожные запросы и категории
// Координирует репозитории книг/категорий и Redis кеш категорий
type CatalogService struct {
	bookRepo     repository.BookRepository
	categoryRepo repository.CategoryRepository
	cache        util.CategoryCache
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	bookRepo repository.BookRepository,
	categoryRepo repository.CategoryRepository,
	cache util.CategoryCache,
) *CatalogService {
	return &CatalogService{
		bookRepo:     bookRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
	}
}

// ListBooks выполняет каталожный запрос
// Подставляет умолчания (page=1, limit=20, status=ACTIVE, сортировка
// по новизне), транслирует фасеты в фильтр репозитория и собирает
// страницу с total/totalPages. Пустой результат - не ошибка
func (s *CatalogService) ListBooks(ctx context.Context, query entity.ListBooksQuery) (*entity.BookListResponse, error) {
	page := query.Page
	if page < 1 {
		page = defaultPage
	}

	limit := query.Limit
	if limit < 1 {
		limit = defaultLimit
	}

	// По умолчанию каталог показывает только ACTIVE объявления;
	// другой статус запрашивается явно (продавец смотрит свои объявления)
	status := query.Status
	if status == "" {
		status = entity.StatusActive
	}

	filter := repository.BookFilter{
		Search:     query.Search,
		CategoryID: query.CategoryID,
		MinPrice:   query.MinPrice,
		MaxPrice:   query.MaxPrice,
		Condition:  query.Condition,
		Binding:    query.Binding,
		SellerType: query.SellerType,
		SellerID:   query.SellerID,
		Status:     status,
		Featured:   query.Featured,
		Bestseller: query.Bestseller,
		SortBy:     query.SortBy,
		Offset:     (page - 1) * limit,
		Limit:      limit,
	}

	books, total, err := s.bookRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	return &entity.BookListResponse{
		Books:      books,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}

// GetBook получает книгу по ID с категориями и продавцом
func (s *CatalogService) GetBook(ctx context.Context, id uuid.UUID) (*entity.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return book, nil
}

// UpdateBookFlags обновляет кураторские флаги витрины (featured/bestseller)
// Доступно только админу; непереданный флаг не изменяется
func (s *CatalogService) UpdateBookFlags(ctx context.Context, id uuid.UUID, req *entity.UpdateBookFlagsRequest) (*entity.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	if req.Featured != nil {
		book.Featured = *req.Featured
	}
	if req.Bestseller != nil {
		book.Bestseller = *req.Bestseller
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to update book flags: %w", err)
	}

	return book, nil
}

// GetAllCategories получает все категории с кешированием в Redis
// Сначала проверяется кеш, при промахе - загрузка из БД и запись в кеш
func (s *CatalogService) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err == nil && len(categories) > 0 {
		return categories, nil
	}

	categories, err = s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	if err := s.cache.SetCategories(ctx, categories, categoriesCacheTTL); err != nil {
		// Данные уже получены из БД, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("failed to cache categories")
	}

	return categories, nil
}

// CreateCategory создает категорию и инвалидирует кеш
// Кириллическое имя заполняется транслитерацией
func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	name := translit.AutoTransliterate(req.Name)

	category := &entity.Category{
		ID:           uuid.New(),
		Name:         name.Latin,
		NameCyrillic: name.Cyrillic,
		Slug:         req.Slug,
		ParentID:     req.ParentID,
		CreatedAt:    time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCategories(ctx)

	return category, nil
}

// UpdateCategory обновляет категорию и инвалидирует кеш
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if req.Name != nil {
		name := translit.AutoTransliterate(*req.Name)
		category.Name = name.Latin
		category.NameCyrillic = name.Cyrillic
	}
	if req.Slug != nil {
		category.Slug = *req.Slug
	}
	if req.ParentID != nil {
		category.ParentID = req.ParentID
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidateCategories(ctx)

	return category, nil
}

// DeleteCategory удаляет категорию и инвалидирует кеш
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.invalidateCategories(ctx)

	return nil
}

// invalidateCategories сбрасывает кеш категорий
// Ошибки кеша логируются, но не прерывают операцию
func (s *CatalogService) invalidateCategories(ctx context.Context) {
	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate categories cache")
	}
}

// totalPages считает число страниц: ceil(total/limit)
func totalPages(total int64, limit int) int {
	return int(math.Ceil(float64(total) / float64(limit)))
}
