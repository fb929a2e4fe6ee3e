package repository

import (
	"context"
	"errors"

	"knjizara/internal/app/bookstore/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository создает новый репозиторий категорий
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create создает новую категорию
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).Create(category)
	return result.Error
}

// GetByID получает категорию по ID
func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var category entity.Category
	result := r.db.WithContext(ctx).First(&category, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, result.Error
	}

	return &category, nil
}

// GetByIDs получает категории по списку ID
// Используется для проверки существования категорий перед привязкой к книге
func (r *categoryRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Category, error) {
	var categories []entity.Category
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories)

	if result.Error != nil {
		return nil, result.Error
	}

	return categories, nil
}

// GetAll получает все категории, отсортированные по имени
func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	result := r.db.WithContext(ctx).Order("name ASC").Find(&categories)

	if result.Error != nil {
		return nil, result.Error
	}

	return categories, nil
}

// Update обновляет категорию
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).Model(&entity.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":          category.Name,
			"name_cyrillic": category.NameCyrillic,
			"slug":          category.Slug,
			"parent_id":     category.ParentID,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// Delete удаляет категорию вместе со строками связи book_categories
// Книги остаются, теряя только привязку к удаленной категории
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM book_categories WHERE category_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&entity.Category{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCategoryNotFound
		}

		return nil
	})
}
