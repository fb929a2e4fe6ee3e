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
	"knjizara/pkg/translit"

	"github.com/google/uuid"
)

const (
	defaultListingStock    = 1
	defaultListingLanguage = "Srpski"
	defaultSellerName      = "Korisnik"
)

// ListingService управляет объявлениями продавцов
// Создание/изменение/снятие с публикации, профили продавцов,
// публикация событий объявлений в Kafka
type ListingService struct {
	bookRepo     repository.BookRepository
	categoryRepo repository.CategoryRepository
	sellerRepo   repository.SellerRepository
	wishlistRepo repository.WishlistRepository
	producer     util.MessagePublisher
}

// NewListingService создает новый сервис объявлений
func NewListingService(
	bookRepo repository.BookRepository,
	categoryRepo repository.CategoryRepository,
	sellerRepo repository.SellerRepository,
	wishlistRepo repository.WishlistRepository,
	producer util.MessagePublisher,
) *ListingService {
	return &ListingService{
		bookRepo:     bookRepo,
		categoryRepo: categoryRepo,
		sellerRepo:   sellerRepo,
		wishlistRepo: wishlistRepo,
		producer:     producer,
	}
}

// CreateListing создает объявление продавца
// 1. Находит или автоматически создает профиль продавца
// 2. Проверяет существование всех категорий
// 3. Проверяет акционную цену
// 4. Транслитерирует текстовые поля и подставляет умолчания
// 5. Сохраняет книгу и публикует событие BOOK_CREATED
func (s *ListingService) CreateListing(ctx context.Context, userID uuid.UUID, req *entity.CreateListingRequest) (*entity.Book, error) {
	// 1. Профиль продавца: у первого объявления пользователя профиля
	// еще нет - создаем PRIVATE профиль автоматически
	seller, err := s.ensureSellerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 2. Все категории из запроса должны существовать
	categories, err := s.categoryRepo.GetByIDs(ctx, req.CategoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	if len(categories) != len(req.CategoryIDs) {
		return nil, ErrCategoryNotFound
	}

	// 3. Акционная цена обязана быть ниже базовой
	if req.DiscountPrice != nil && *req.DiscountPrice >= req.Price {
		return nil, ErrInvalidDiscountPrice
	}

	// 4. Транслитерация пар полей и умолчания
	title := translit.AutoTransliterate(req.Title)
	author := translit.AutoTransliterate(req.Author)
	description := translit.AutoTransliterate(req.Description)

	stock := req.Stock
	if stock <= 0 {
		stock = defaultListingStock
	}

	binding := req.Binding
	if binding == "" {
		binding = entity.BindingSoftcover
	}

	language := req.Language
	if language == "" {
		language = defaultListingLanguage
	}

	isbn := req.ISBN
	if isbn == "" {
		// Пользовательские объявления часто без ISBN - генерируем
		// синтетический, уникальный за счет наносекундного времени
		isbn = fmt.Sprintf("USER-%d", time.Now().UnixNano())
	}

	book := &entity.Book{
		ID:                  uuid.New(),
		Title:               title.Latin,
		TitleCyrillic:       title.Cyrillic,
		Author:              author.Latin,
		AuthorCyrillic:      author.Cyrillic,
		Description:         description.Latin,
		DescriptionCyrillic: description.Cyrillic,
		Price:               req.Price,
		DiscountPrice:       req.DiscountPrice,
		ISBN:                isbn,
		Stock:               stock,
		Condition:           req.Condition,
		Status:              entity.StatusActive,
		Binding:             binding,
		Publisher:           req.Publisher,
		PublishYear:         req.PublishYear,
		PageCount:           req.PageCount,
		Language:            language,
		CoverImage:          req.CoverImage,
		IsNegotiable:        req.IsNegotiable,
		SellerID:            seller.ID,
	}

	// 5. Сохранение и событие
	if err := s.bookRepo.Create(ctx, book, req.CategoryIDs); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	book.Categories = categories

	s.publishBookEvent(ctx, "BOOK_CREATED", book)

	logger.Info().
		Str("book_id", book.ID.String()).
		Str("seller_id", seller.ID.String()).
		Msg("listing created")

	return book, nil
}

// UpdateListing частично обновляет объявление владельца
// Измененные текстовые поля транслитерируются заново.
// Пополнение остатка проданного объявления возвращает его в ACTIVE
func (s *ListingService) UpdateListing(ctx context.Context, userID, bookID uuid.UUID, req *entity.UpdateListingRequest, isAdmin bool) (*entity.Book, error) {
	book, err := s.getOwnedBook(ctx, userID, bookID, isAdmin)
	if err != nil {
		return nil, err
	}

	priceChanged := false

	if req.Title != nil {
		title := translit.AutoTransliterate(*req.Title)
		book.Title = title.Latin
		book.TitleCyrillic = title.Cyrillic
	}
	if req.Author != nil {
		author := translit.AutoTransliterate(*req.Author)
		book.Author = author.Latin
		book.AuthorCyrillic = author.Cyrillic
	}
	if req.Description != nil {
		description := translit.AutoTransliterate(*req.Description)
		book.Description = description.Latin
		book.DescriptionCyrillic = description.Cyrillic
	}
	if req.Price != nil {
		book.Price = *req.Price
		priceChanged = true
	}
	if req.DiscountPrice != nil {
		book.DiscountPrice = req.DiscountPrice
		priceChanged = true
	}
	if book.DiscountPrice != nil && *book.DiscountPrice >= book.Price {
		return nil, ErrInvalidDiscountPrice
	}
	if req.Condition != nil {
		book.Condition = *req.Condition
	}
	if req.CoverImage != nil {
		book.CoverImage = *req.CoverImage
	}
	if req.Publisher != nil {
		book.Publisher = *req.Publisher
	}
	if req.PublishYear != nil {
		book.PublishYear = *req.PublishYear
	}
	if req.PageCount != nil {
		book.PageCount = *req.PageCount
	}
	if req.Binding != nil {
		book.Binding = *req.Binding
	}
	if req.Language != nil {
		book.Language = *req.Language
	}
	if req.IsNegotiable != nil {
		book.IsNegotiable = *req.IsNegotiable
	}
	if req.Stock != nil {
		book.Stock = *req.Stock
		// Пополнение остатка проданного объявления возвращает его
		// в каталог
		if book.Status == entity.StatusSold && book.Stock > 0 {
			book.Status = entity.StatusActive
		}
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	if len(req.CategoryIDs) > 0 {
		categories, err := s.categoryRepo.GetByIDs(ctx, req.CategoryIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to get categories: %w", err)
		}
		if len(categories) != len(req.CategoryIDs) {
			return nil, ErrCategoryNotFound
		}
		if err := s.bookRepo.SetCategories(ctx, book.ID, req.CategoryIDs); err != nil {
			return nil, fmt.Errorf("failed to set categories: %w", err)
		}
		book.Categories = categories
	}

	if priceChanged {
		s.publishBookEvent(ctx, "BOOK_UPDATED", book)
	}

	return book, nil
}

// DeleteListing удаляет объявление
// Объявление, на которое ссылаются заказы, удалить нельзя - история
// заказов должна оставаться читаемой. Записи из списков желаний
// удаляются вместе с объявлением
func (s *ListingService) DeleteListing(ctx context.Context, userID, bookID uuid.UUID, isAdmin bool) error {
	book, err := s.getOwnedBook(ctx, userID, bookID, isAdmin)
	if err != nil {
		return err
	}

	ordered, err := s.bookRepo.CountOrderItems(ctx, book.ID)
	if err != nil {
		return fmt.Errorf("failed to count order references: %w", err)
	}
	if ordered > 0 {
		return ErrBookOrdered
	}

	if err := s.wishlistRepo.DeleteByBookID(ctx, book.ID); err != nil {
		return fmt.Errorf("failed to clean wishlist entries: %w", err)
	}

	if err := s.bookRepo.Delete(ctx, book.ID); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return ErrBookNotFound
		}
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	logger.Info().Str("book_id", book.ID.String()).Msg("listing deleted")

	return nil
}

// ToggleStatus переключает объявление между ACTIVE и PAUSED
// SOLD выставляется отдельной операцией MarkAsSold
func (s *ListingService) ToggleStatus(ctx context.Context, userID, bookID uuid.UUID, status entity.ListingStatus, isAdmin bool) (*entity.Book, error) {
	book, err := s.getOwnedBook(ctx, userID, bookID, isAdmin)
	if err != nil {
		return nil, err
	}

	book.Status = status
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to update listing status: %w", err)
	}

	s.publishBookEvent(ctx, "BOOK_STATUS_CHANGED", book)

	return book, nil
}

// MarkAsSold помечает объявление проданным
// Остатки при оформлении заказа не списываются автоматически -
// продавец подтверждает продажу явно
func (s *ListingService) MarkAsSold(ctx context.Context, userID, bookID uuid.UUID, isAdmin bool) (*entity.Book, error) {
	book, err := s.getOwnedBook(ctx, userID, bookID, isAdmin)
	if err != nil {
		return nil, err
	}

	book.Status = entity.StatusSold
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to mark listing as sold: %w", err)
	}

	s.publishBookEvent(ctx, "BOOK_STATUS_CHANGED", book)

	return book, nil
}

// GetMyListings возвращает объявления текущего пользователя
// Пользователь без профиля продавца получает пустую страницу,
// а не ошибку - фронтенд показывает ее до первого объявления
func (s *ListingService) GetMyListings(ctx context.Context, userID uuid.UUID, query entity.MyListingsQuery) (*entity.BookListResponse, error) {
	seller, err := s.sellerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSellerNotFound) {
			return &entity.BookListResponse{
				Books:      []entity.Book{},
				Total:      0,
				Page:       defaultPage,
				TotalPages: 0,
			}, nil
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

	filter := repository.BookFilter{
		SellerID: &seller.ID,
		Status:   query.Status,
		Offset:   (page - 1) * limit,
		Limit:    limit,
	}

	books, total, err := s.bookRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller books: %w", err)
	}

	return &entity.BookListResponse{
		Books:      books,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}

// GetSellerListings возвращает публичные (ACTIVE) объявления продавца
func (s *ListingService) GetSellerListings(ctx context.Context, sellerID uuid.UUID, page, limit int) (*entity.BookListResponse, error) {
	if _, err := s.sellerRepo.GetByID(ctx, sellerID); err != nil {
		if errors.Is(err, repository.ErrSellerNotFound) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to get seller profile: %w", err)
	}

	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}

	filter := repository.BookFilter{
		SellerID: &sellerID,
		Status:   entity.StatusActive,
		Offset:   (page - 1) * limit,
		Limit:    limit,
	}

	books, total, err := s.bookRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller books: %w", err)
	}

	return &entity.BookListResponse{
		Books:      books,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}

// RegisterSeller создает профиль продавца по явному запросу
// Повторная регистрация запрещена
func (s *ListingService) RegisterSeller(ctx context.Context, userID uuid.UUID, req *entity.RegisterSellerRequest) (*entity.SellerProfile, error) {
	if _, err := s.sellerRepo.GetByUserID(ctx, userID); err == nil {
		return nil, ErrAlreadySeller
	} else if !errors.Is(err, repository.ErrSellerNotFound) {
		return nil, fmt.Errorf("failed to check seller profile: %w", err)
	}

	profile := &entity.SellerProfile{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        req.Type,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		City:        req.City,
	}

	if err := s.sellerRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create seller profile: %w", err)
	}

	return profile, nil
}

// GetSeller возвращает публичный профиль продавца
func (s *ListingService) GetSeller(ctx context.Context, sellerID uuid.UUID) (*entity.SellerProfile, error) {
	profile, err := s.sellerRepo.GetByID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, repository.ErrSellerNotFound) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to get seller profile: %w", err)
	}
	return profile, nil
}

// ensureSellerProfile возвращает профиль продавца, создавая
// минимальный PRIVATE профиль при первом объявлении
func (s *ListingService) ensureSellerProfile(ctx context.Context, userID uuid.UUID) (*entity.SellerProfile, error) {
	seller, err := s.sellerRepo.GetByUserID(ctx, userID)
	if err == nil {
		return seller, nil
	}
	if !errors.Is(err, repository.ErrSellerNotFound) {
		return nil, fmt.Errorf("failed to get seller profile: %w", err)
	}

	seller = &entity.SellerProfile{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        entity.SellerPrivate,
		DisplayName: defaultSellerName,
	}
	if err := s.sellerRepo.Create(ctx, seller); err != nil {
		return nil, fmt.Errorf("failed to create seller profile: %w", err)
	}

	logger.Info().
		Str("user_id", userID.String()).
		Str("seller_id", seller.ID.String()).
		Msg("seller profile auto-created")

	return seller, nil
}

// getOwnedBook загружает книгу и проверяет право доступа
func (s *ListingService) getOwnedBook(ctx context.Context, userID, bookID uuid.UUID, isAdmin bool) (*entity.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	if isAdmin {
		return book, nil
	}

	seller, err := s.sellerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSellerNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("failed to get seller profile: %w", err)
	}
	if book.SellerID != seller.ID {
		return nil, ErrForbidden
	}

	return book, nil
}

// publishBookEvent отправляет событие объявления в Kafka
// Ошибка публикации логируется, но не прерывает основную операцию
func (s *ListingService) publishBookEvent(ctx context.Context, eventType string, book *entity.Book) {
	event := entity.BookEvent{
		EventType: eventType,
		BookID:    book.ID,
		SellerID:  book.SellerID,
		Title:     book.Title,
		Price:     book.EffectivePrice(),
		Status:    book.Status,
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal book event")
		return
	}

	if err := s.producer.PublishMessage(ctx, book.ID.String(), payload); err != nil {
		logger.Error().
			Err(err).
			Str("event_type", eventType).
			Str("book_id", book.ID.String()).
			Msg("failed to publish book event")
	}
}
