package service

import (
	"context"
	"testing"

	"knjizara/internal/app/bookstore/entity"
	"knjizara/internal/app/bookstore/repository"
	"knjizara/internal/app/bookstore/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestSeller(userID uuid.UUID) *entity.SellerProfile {
	return &entity.SellerProfile{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        entity.SellerPrivate,
		DisplayName: "Marko",
	}
}

func newListingService(
	bookRepo *mocks.MockBookRepository,
	categoryRepo *mocks.MockCategoryRepository,
	sellerRepo *mocks.MockSellerRepository,
	wishlistRepo *mocks.MockWishlistRepository,
	producer *mocks.MockMessagePublisher,
) *ListingService {
	return NewListingService(bookRepo, categoryRepo, sellerRepo, wishlistRepo, producer)
}

// ==================== CreateListing Tests ====================

func TestListingService_CreateListing_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	wishlistRepo := new(mocks.MockWishlistRepository)
	producer := new(mocks.MockMessagePublisher)

	userID := uuid.New()
	seller := newTestSeller(userID)
	category := newTestCategory()

	sellerRepo.On("GetByUserID", ctx, userID).Return(seller, nil)
	categoryRepo.On("GetByIDs", ctx, []uuid.UUID{category.ID}).
		Return([]entity.Category{*category}, nil)
	bookRepo.On("Create", ctx, mock.AnythingOfType("*entity.Book"), []uuid.UUID{category.ID}).Return(nil)
	producer.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	service := newListingService(bookRepo, categoryRepo, sellerRepo, wishlistRepo, producer)

	req := &entity.CreateListingRequest{
		Title:       "Derviš i smrt",
		Author:      "Meša Selimović",
		Price:       950,
		Condition:   entity.ConditionGood,
		CategoryIDs: []uuid.UUID{category.ID},
	}

	// Act
	book, err := service.CreateListing(ctx, userID, req)

	// Assert: транслитерация и умолчания применены
	require.NoError(t, err)
	assert.Equal(t, "Derviš i smrt", book.Title)
	assert.Equal(t, "Дервиш и смрт", book.TitleCyrillic)
	assert.Equal(t, seller.ID, book.SellerID)
	assert.Equal(t, entity.StatusActive, book.Status)
	assert.Equal(t, 1, book.Stock)
	assert.Equal(t, entity.BindingSoftcover, book.Binding)
	assert.Equal(t, "Srpski", book.Language)
	assert.Contains(t, book.ISBN, "USER-")

	bookRepo.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestListingService_CreateListing_CyrillicInput(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	wishlistRepo := new(mocks.MockWishlistRepository)
	producer := new(mocks.MockMessagePublisher)

	userID := uuid.New()
	seller := newTestSeller(userID)
	category := newTestCategory()

	sellerRepo.On("GetByUserID", ctx, userID).Return(seller, nil)
	categoryRepo.On("GetByIDs", ctx, []uuid.UUID{category.ID}).
		Return([]entity.Category{*category}, nil)
	bookRepo.On("Create", ctx, mock.AnythingOfType("*entity.Book"), []uuid.UUID{category.ID}).Return(nil)
	producer.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	service := newListingService(bookRepo, categoryRepo, sellerRepo, wishlistRepo, producer)

	req := &entity.CreateListingRequest{
		Title:       "Проклета авлија",
		Author:      "Иво Андрић",
		Price:       800,
		Condition:   entity.ConditionVeryGood,
		CategoryIDs: []uuid.UUID{category.ID},
	}

	// Act
	book, err := service.CreateListing(ctx, userID, req)

	// Assert: кириллический ввод - латиница генерируется
	require.NoError(t, err)
	assert.Equal(t, "Prokleta avlija", book.Title)
	assert.Equal(t, "Проклета авлија", book.TitleCyrillic)
	assert.Equal(t, "Ivo Andrić", book.Author)
	assert.Equal(t, "Иво Андрић", book.AuthorCyrillic)
}

func TestListingService_CreateListing_AutoCreatesSellerProfile(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	wishlistRepo := new(mocks.MockWishlistRepository)
	producer := new(mocks.MockMessagePublisher)

	userID := uuid.New()
	category := newTestCategory()

	sellerRepo.On("GetByUserID", ctx, userID).Return(nil, repository.ErrSellerNotFound)
	sellerRepo.On("Create", ctx, mock.MatchedBy(func(p *entity.SellerProfile) bool {
		return p.UserID == userID && p.Type == entity.SellerPrivate && p.DisplayName == "Korisnik"
	})).Return(nil)
	categoryRepo.On("GetByIDs", ctx, []uuid.UUID{category.ID}).
		Return([]entity.Category{*category}, nil)
	bookRepo.On("Create", ctx, mock.AnythingOfType("*entity.Book"), []uuid.UUID{category.ID}).Return(nil)
	producer.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	service := newListingService(bookRepo, categoryRepo, sellerRepo, wishlistRepo, producer)

	req := &entity.CreateListingRequest{
		Title:       "Hazarski rečnik",
		Author:      "Milorad Pavić",
		Price:       1100,
		Condition:   entity.ConditionNew,
		CategoryIDs: []uuid.UUID{category.ID},
	}

	// Act
	_, err := service.CreateListing(ctx, userID, req)

	// Assert
	require.NoError(t, err)
	sellerRepo.AssertExpectations(t)
}

func TestListingService_CreateListing_UnknownCategory(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	wishlistRepo := new(mocks.MockWishlistRepository)
	producer := new(mocks.MockMessagePublisher)

	userID := uuid.New()
	seller := newTestSeller(userID)
	missing := uuid.New()

	sellerRepo.On("GetByUserID", ctx, userID).Return(seller, nil)
	categoryRepo.On("GetByIDs", ctx, []uuid.UUID{missing}).Return([]entity.Category{}, nil)

	service := newListingService(bookRepo, categoryRepo, sellerRepo, wishlistRepo, producer)

	req := &entity.CreateListingRequest{
		Title:       "Test",
		Author:      "Test",
		Price:       500,
		Condition:   entity.ConditionNew,
		CategoryIDs: []uuid.UUID{missing},
	}

	// Act
	book, err := service.CreateListing(ctx, userID, req)

	// Assert
	assert.Nil(t, book)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	bookRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestListingService_CreateListing_InvalidDiscount(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	wishlistRepo := new(mocks.MockWishlistRepository)
	producer := new(mocks.MockMessagePublisher)

	userID := uuid.New()
	seller := newTestSeller(userID)
	category := newTestCategory()

	sellerRepo.On("GetByUserID", ctx, userID).Return(seller, nil)
	categoryRepo.On("GetByIDs", ctx, []uuid.UUID{category.ID}).
		Return([]entity.Category{*category}, nil)

	service := newListingService(bookRepo, categoryRepo, sellerRepo, wishlistRepo, producer)

	discount := 1200.0
	req := &entity.CreateListingRequest{
		Title:         "Test",
		Author:        "Test",
		Price:         1000,
		DiscountPrice: &discount,
		Condition:     entity.ConditionNew,
		CategoryIDs:   []uuid.UUID{category.ID},
	}

	// Act: акционная цена выше базовой
	book, err := service.CreateListing(ctx, userID, req)

	// Assert
	assert.Nil(t, book)
	assert.ErrorIs(t, err, ErrInvalidDiscountPrice)
}

// ==================== UpdateListing Tests ====================

func TestListingService_UpdateListing_NotOwner(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	wishlistRepo := new(mocks.MockWishlistRepository)
	producer := new(mocks.MockMessagePublisher)

	userID := uuid.New()
	seller := newTestSeller(userID)
	book := newTestBook(uuid.New()) // чужая книга

	bookRepo.On("GetByID", ctx, book.ID).Return(book, nil)
	sellerRepo.On("GetByUserID", ctx, userID).Return(seller, nil)

	service := newListingService(bookRepo, categoryRepo, sellerRepo, wishlistRepo, producer)

	newTitle := "Novi naslov"
	// Act
	_, err := service.UpdateListing(ctx, userID, book.ID, &entity.UpdateListingRequest{Title: &newTitle}, false)

	// Assert
	assert.ErrorIs(t, err, ErrForbidden)
	bookRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestListingService_UpdateListing_RestockReactivatesSold(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	wishlistRepo := new(mocks.MockWishlistRepository)
	producer := new(mocks.MockMessagePublisher)

	userID := uuid.New()
	seller := newTestSeller(userID)
	book := newTestBook(seller.ID)
	book.Status = entity.StatusSold
	book.Stock = 0

	bookRepo.On("GetByID", ctx, book.ID).Return(book, nil)
	sellerRepo.On("GetByUserID", ctx, userID).Return(seller, nil)
	bookRepo.On("Update", ctx, mock.AnythingOfType("*entity.Book")).Return(nil)

	service := newListingService(bookRepo, categoryRepo, sellerRepo, wishlistRepo, producer)

	stock := 2
	// Act: пополнение остатка проданной книги
	updated, err := service.UpdateListing(ctx, userID, book.ID, &entity.UpdateListingRequest{Stock: &stock}, false)

	// Assert: объявление вернулось в каталог
	require.NoError(t, err)
	assert.Equal(t, entity.StatusActive, updated.Status)
	assert.Equal(t, 2, updated.Stock)
}

func TestListingService_UpdateListing_PriceChangePublishesEvent(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	wishlistRepo := new(mocks.MockWishlistRepository)
	producer := new(mocks.MockMessagePublisher)

	userID := uuid.New()
	seller := newTestSeller(userID)
	book := newTestBook(seller.ID)

	bookRepo.On("GetByID", ctx, book.ID).Return(book, nil)
	sellerRepo.On("GetByUserID", ctx, userID).Return(seller, nil)
	bookRepo.On("Update", ctx, mock.AnythingOfType("*entity.Book")).Return(nil)
	producer.On("PublishMessage", ctx, book.ID.String(), mock.Anything).Return(nil)

	service := newListingService(bookRepo, categoryRepo, sellerRepo, wishlistRepo, producer)

	price := 999.0
	// Act
	_, err := service.UpdateListing(ctx, userID, book.ID, &entity.UpdateListingRequest{Price: &price}, false)

	// Assert
	require.NoError(t, err)
	producer.AssertExpectations(t)
}

// ==================== DeleteListing Tests ====================

func TestListingService_DeleteListing_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	wishlistRepo := new(mocks.MockWishlistRepository)
	producer := new(mocks.MockMessagePublisher)

	userID := uuid.New()
	seller := newTestSeller(userID)
	book := newTestBook(seller.ID)

	bookRepo.On("GetByID", ctx, book.ID).Return(book, nil)
	sellerRepo.On("GetByUserID", ctx, userID).Return(seller, nil)
	bookRepo.On("CountOrderItems", ctx, book.ID).Return(int64(0), nil)
	wishlistRepo.On("DeleteByBookID", ctx, book.ID).Return(nil)
	bookRepo.On("Delete", ctx, book.ID).Return(nil)

	service := newListingService(bookRepo, categoryRepo, sellerRepo, wishlistRepo, producer)

	// Act
	err := service.DeleteListing(ctx, userID, book.ID, false)

	// Assert
	require.NoError(t, err)
	bookRepo.AssertExpectations(t)
	wishlistRepo.AssertExpectations(t)
}

func TestListingService_DeleteListing_OrderedBookBlocked(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	wishlistRepo := new(mocks.MockWishlistRepository)
	producer := new(mocks.MockMessagePublisher)

	userID := uuid.New()
	seller := newTestSeller(userID)
	book := newTestBook(seller.ID)

	bookRepo.On("GetByID", ctx, book.ID).Return(book, nil)
	sellerRepo.On("GetByUserID", ctx, userID).Return(seller, nil)
	bookRepo.On("CountOrderItems", ctx, book.ID).Return(int64(2), nil)

	service := newListingService(bookRepo, categoryRepo, sellerRepo, wishlistRepo, producer)

	// Act: книга уже в заказах - удаление запрещено
	err := service.DeleteListing(ctx, userID, book.ID, false)

	// Assert
	assert.ErrorIs(t, err, ErrBookOrdered)
	bookRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// ==================== Status Tests ====================

func TestListingService_MarkAsSold(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	wishlistRepo := new(mocks.MockWishlistRepository)
	producer := new(mocks.MockMessagePublisher)

	userID := uuid.New()
	seller := newTestSeller(userID)
	book := newTestBook(seller.ID)

	bookRepo.On("GetByID", ctx, book.ID).Return(book, nil)
	sellerRepo.On("GetByUserID", ctx, userID).Return(seller, nil)
	bookRepo.On("Update", ctx, mock.AnythingOfType("*entity.Book")).Return(nil)
	producer.On("PublishMessage", ctx, book.ID.String(), mock.Anything).Return(nil)

	service := newListingService(bookRepo, categoryRepo, sellerRepo, wishlistRepo, producer)

	// Act
	updated, err := service.MarkAsSold(ctx, userID, book.ID, false)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSold, updated.Status)
}

// ==================== MyListings Tests ====================

func TestListingService_GetMyListings_NoProfile_EmptyPage(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	wishlistRepo := new(mocks.MockWishlistRepository)
	producer := new(mocks.MockMessagePublisher)

	userID := uuid.New()
	sellerRepo.On("GetByUserID", ctx, userID).Return(nil, repository.ErrSellerNotFound)

	service := newListingService(bookRepo, categoryRepo, sellerRepo, wishlistRepo, producer)

	// Act: пользователь еще не продавец
	resp, err := service.GetMyListings(ctx, userID, entity.MyListingsQuery{})

	// Assert: пустая страница, не ошибка
	require.NoError(t, err)
	assert.Empty(t, resp.Books)
	assert.Equal(t, int64(0), resp.Total)
	bookRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

// ==================== RegisterSeller Tests ====================

func TestListingService_RegisterSeller_AlreadyExists(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	wishlistRepo := new(mocks.MockWishlistRepository)
	producer := new(mocks.MockMessagePublisher)

	userID := uuid.New()
	sellerRepo.On("GetByUserID", ctx, userID).Return(newTestSeller(userID), nil)

	service := newListingService(bookRepo, categoryRepo, sellerRepo, wishlistRepo, producer)

	req := &entity.RegisterSellerRequest{
		Type:        entity.SellerBusiness,
		DisplayName: "Knjizara Delfi",
	}

	// Act
	profile, err := service.RegisterSeller(ctx, userID, req)

	// Assert
	assert.Nil(t, profile)
	assert.ErrorIs(t, err, ErrAlreadySeller)
}

func TestListingService_RegisterSeller_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bookRepo := new(mocks.MockBookRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	sellerRepo := new(mocks.MockSellerRepository)
	wishlistRepo := new(mocks.MockWishlistRepository)
	producer := new(mocks.MockMessagePublisher)

	userID := uuid.New()
	sellerRepo.On("GetByUserID", ctx, userID).Return(nil, repository.ErrSellerNotFound)
	sellerRepo.On("Create", ctx, mock.AnythingOfType("*entity.SellerProfile")).Return(nil)

	service := newListingService(bookRepo, categoryRepo, sellerRepo, wishlistRepo, producer)

	req := &entity.RegisterSellerRequest{
		Type:        entity.SellerBusiness,
		DisplayName: "Knjizara Delfi",
		City:        "Beograd",
	}

	// Act
	profile, err := service.RegisterSeller(ctx, userID, req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.SellerBusiness, profile.Type)
	assert.Equal(t, userID, profile.UserID)
	sellerRepo.AssertExpectations(t)
}
