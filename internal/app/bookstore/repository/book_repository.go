package repository

import (
	"context"
	"errors"
	"time"

	"knjizara/internal/app/bookstore/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository создает новый репозиторий книг
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// Create создает объявление и привязывает категории одной транзакцией
// Категории передаются ID-шниками: создаются только строки связи,
// сами категории не изменяются
func (r *bookRepository) Create(ctx context.Context, book *entity.Book, categoryIDs []uuid.UUID) error {
	book.Categories = categoryRefs(categoryIDs)

	result := r.db.WithContext(ctx).Omit("Categories.*").Create(book)
	return result.Error
}

// GetByID получает книгу по ID с категориями и продавцом
func (r *bookRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Book, error) {
	var book entity.Book
	result := r.db.WithContext(ctx).
		Preload("Categories").
		Preload("Seller").
		First(&book, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, result.Error
	}

	return &book, nil
}

// List выполняет каталожный запрос: фильтрация, сортировка, пагинация
// Возвращает страницу книг и общее число строк под фильтром без пагинации.
// Страница за пределами результата - пустой срез, не ошибка
func (r *bookRepository) List(ctx context.Context, filter BookFilter) ([]entity.Book, int64, error) {
	scope := bookFilterScope(filter)

	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Book{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	books := make([]entity.Book, 0)
	err := r.db.WithContext(ctx).Model(&entity.Book{}).
		Scopes(scope).
		Order(orderClause(filter.SortBy)).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Preload("Categories").
		Preload("Seller").
		Find(&books).Error
	if err != nil {
		return nil, 0, err
	}

	return books, total, nil
}

// bookFilterScope применяет фасеты фильтра к запросу
// Фасеты конъюнктивны (AND); поиск - дизъюнкция (OR) по названию,
// автору (обе письменности) и ISBN, без учета регистра
func bookFilterScope(filter BookFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("books.status = ?", filter.Status)
		}

		if filter.Search != "" {
			pattern := "%" + filter.Search + "%"
			db = db.Where(
				"books.title ILIKE ? OR books.title_cyrillic ILIKE ? OR books.author ILIKE ? OR books.author_cyrillic ILIKE ? OR books.isbn ILIKE ?",
				pattern, pattern, pattern, pattern, pattern,
			)
		}

		if filter.CategoryID != nil {
			// Книга подходит, если целевая категория среди ее категорий.
			// Фильтр нерекурсивный: дочерние категории не включаются
			db = db.Where(
				"EXISTS (SELECT 1 FROM book_categories bc WHERE bc.book_id = books.id AND bc.category_id = ?)",
				*filter.CategoryID,
			)
		}

		// Границы цены включительные, фильтруется базовая цена (не акционная)
		if filter.MinPrice != nil {
			db = db.Where("books.price >= ?", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			db = db.Where("books.price <= ?", *filter.MaxPrice)
		}

		if filter.Condition != "" {
			db = db.Where("books.condition = ?", filter.Condition)
		}

		if filter.Binding != "" {
			db = db.Where("books.binding = ?", filter.Binding)
		}

		if filter.SellerID != nil {
			db = db.Where("books.seller_id = ?", *filter.SellerID)
		}

		if filter.SellerType != "" {
			db = db.Joins("JOIN seller_profiles ON seller_profiles.id = books.seller_id").
				Where("seller_profiles.type = ?", filter.SellerType)
		}

		// Кураторские подборки витрины (featured/bestseller)
		if filter.Featured != nil {
			db = db.Where("books.featured = ?", *filter.Featured)
		}
		if filter.Bestseller != nil {
			db = db.Where("books.bestseller = ?", *filter.Bestseller)
		}

		return db
	}
}

// orderClause возвращает ORDER BY для варианта сортировки
// Вторичный ключ id гарантирует детерминированную пагинацию
// при повторных запросах на неизменных данных
func orderClause(sortBy string) string {
	switch sortBy {
	case entity.SortPriceAsc:
		return "books.price ASC, books.id ASC"
	case entity.SortPriceDesc:
		return "books.price DESC, books.id ASC"
	case entity.SortTitle:
		return "books.title ASC, books.id ASC"
	default:
		return "books.created_at DESC, books.id ASC"
	}
}

// Update обновляет поля книги (категории обновляются отдельно)
func (r *bookRepository) Update(ctx context.Context, book *entity.Book) error {
	result := r.db.WithContext(ctx).Model(&entity.Book{}).
		Where("id = ?", book.ID).
		Updates(map[string]interface{}{
			"title":                book.Title,
			"title_cyrillic":       book.TitleCyrillic,
			"author":               book.Author,
			"author_cyrillic":      book.AuthorCyrillic,
			"description":          book.Description,
			"description_cyrillic": book.DescriptionCyrillic,
			"price":                book.Price,
			"discount_price":       book.DiscountPrice,
			"stock":                book.Stock,
			"condition":            book.Condition,
			"status":               book.Status,
			"binding":              book.Binding,
			"publisher":            book.Publisher,
			"publish_year":         book.PublishYear,
			"page_count":           book.PageCount,
			"language":             book.Language,
			"cover_image":          book.CoverImage,
			"is_negotiable":        book.IsNegotiable,
			"featured":             book.Featured,
			"bestseller":           book.Bestseller,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}

	return nil
}

// SetCategories заменяет набор категорий книги (semantics: set, не append)
func (r *bookRepository) SetCategories(ctx context.Context, bookID uuid.UUID, categoryIDs []uuid.UUID) error {
	book := entity.Book{ID: bookID}
	return r.db.WithContext(ctx).Model(&book).
		Association("Categories").
		Replace(categoryRefs(categoryIDs))
}

// Delete удаляет книгу вместе со строками связи категорий
func (r *bookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM book_categories WHERE book_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&entity.Book{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBookNotFound
		}

		return nil
	})
}

// CountOrderItems возвращает число позиций заказов, ссылающихся на книгу
// Используется для блокировки удаления заказанных книг
func (r *bookRepository) CountOrderItems(ctx context.Context, bookID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.OrderItem{}).
		Where("book_id = ?", bookID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// ExpireOlderThan помечает ACTIVE объявления старше cutoff как EXPIRED
// Возвращает число затронутых строк
func (r *bookRepository) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Book{}).
		Where("status = ? AND created_at < ?", entity.StatusActive, cutoff).
		Update("status", entity.StatusExpired)

	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// categoryRefs строит срез категорий-ссылок (только ID) для gorm association
func categoryRefs(ids []uuid.UUID) []entity.Category {
	refs := make([]entity.Category, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, entity.Category{ID: id})
	}
	return refs
}
