package repository

import (
	"context"
	"errors"

	"knjizara/internal/app/bookstore/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository создает новый репозиторий адресов
func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

// Create создает адрес
// Если адрес помечен дефолтным, предыдущий дефолтный адрес пользователя
// сбрасывается в той же транзакции - инвариант "не более одного дефолтного"
func (r *addressRepository) Create(ctx context.Context, address *entity.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := clearDefault(tx, address.UserID, uuid.Nil); err != nil {
				return err
			}
		}

		return tx.Create(address).Error
	})
}

// GetByID получает адрес по ID
func (r *addressRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Address, error) {
	var address entity.Address
	result := r.db.WithContext(ctx).First(&address, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, result.Error
	}

	return &address, nil
}

// GetByUserID получает адреса пользователя: дефолтный первым, затем новые
func (r *addressRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Address, error) {
	var addresses []entity.Address
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses)

	if result.Error != nil {
		return nil, result.Error
	}

	return addresses, nil
}

// Update обновляет адрес
// Установка IsDefault=true сбрасывает прочие дефолтные адреса
// пользователя в той же транзакции
func (r *addressRepository) Update(ctx context.Context, address *entity.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := clearDefault(tx, address.UserID, address.ID); err != nil {
				return err
			}
		}

		result := tx.Model(&entity.Address{}).
			Where("id = ?", address.ID).
			Updates(map[string]interface{}{
				"full_name":   address.FullName,
				"street":      address.Street,
				"city":        address.City,
				"postal_code": address.PostalCode,
				"phone":       address.Phone,
				"is_default":  address.IsDefault,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAddressNotFound
		}

		return nil
	})
}

// SetDefault делает адрес дефолтным
// Сброс предыдущего дефолтного и установка нового выполняются атомарно:
// после коммита ровно один адрес пользователя имеет is_default=true
func (r *addressRepository) SetDefault(ctx context.Context, userID, addressID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearDefault(tx, userID, addressID); err != nil {
			return err
		}

		result := tx.Model(&entity.Address{}).
			Where("id = ? AND user_id = ?", addressID, userID).
			Update("is_default", true)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAddressNotFound
		}

		return nil
	})
}

// Delete удаляет адрес
func (r *addressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Address{}, "id = ?", id)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAddressNotFound
	}

	return nil
}

// clearDefault сбрасывает флаг is_default у всех адресов пользователя,
// кроме exceptID (uuid.Nil - без исключений)
func clearDefault(tx *gorm.DB, userID, exceptID uuid.UUID) error {
	q := tx.Model(&entity.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true)

	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}

	return q.Update("is_default", false).Error
}
