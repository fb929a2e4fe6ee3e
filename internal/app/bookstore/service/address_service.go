package service

import (
	"context"
	"errors"
	"fmt"

	"knjizara/internal/app/bookstore/entity"
	"knjizara/internal/app/bookstore/repository"

	"github.com/google/uuid"
)

// AddressService управляет адресами доставки пользователя
// Инвариант "не более одного дефолтного адреса" обеспечивается
// транзакциями репозитория
type AddressService struct {
	addressRepo repository.AddressRepository
}

// NewAddressService создает новый сервис адресов
func NewAddressService(addressRepo repository.AddressRepository) *AddressService {
	return &AddressService{addressRepo: addressRepo}
}

// CreateAddress создает адрес доставки
// Первый адрес пользователя автоматически становится дефолтным
func (s *AddressService) CreateAddress(ctx context.Context, userID uuid.UUID, req *entity.CreateAddressRequest) (*entity.Address, error) {
	existing, err := s.addressRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get addresses: %w", err)
	}

	address := &entity.Address{
		ID:         uuid.New(),
		UserID:     userID,
		FullName:   req.FullName,
		Street:     req.Street,
		City:       req.City,
		PostalCode: req.PostalCode,
		Phone:      req.Phone,
		IsDefault:  req.IsDefault || len(existing) == 0,
	}

	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	return address, nil
}

// GetUserAddresses возвращает все адреса пользователя
func (s *AddressService) GetUserAddresses(ctx context.Context, userID uuid.UUID) ([]entity.Address, error) {
	addresses, err := s.addressRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get addresses: %w", err)
	}
	return addresses, nil
}

// UpdateAddress частично обновляет адрес владельца
func (s *AddressService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, req *entity.UpdateAddressRequest) (*entity.Address, error) {
	address, err := s.getOwnedAddress(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		address.FullName = *req.FullName
	}
	if req.Street != nil {
		address.Street = *req.Street
	}
	if req.City != nil {
		address.City = *req.City
	}
	if req.PostalCode != nil {
		address.PostalCode = *req.PostalCode
	}
	if req.Phone != nil {
		address.Phone = *req.Phone
	}
	if req.IsDefault != nil {
		address.IsDefault = *req.IsDefault
	}

	if err := s.addressRepo.Update(ctx, address); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to update address: %w", err)
	}

	return address, nil
}

// SetDefaultAddress делает адрес дефолтным
// Предыдущий дефолтный адрес сбрасывается в той же транзакции
func (s *AddressService) SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if _, err := s.getOwnedAddress(ctx, userID, addressID); err != nil {
		return err
	}

	if err := s.addressRepo.SetDefault(ctx, userID, addressID); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return ErrAddressNotFound
		}
		return fmt.Errorf("failed to set default address: %w", err)
	}

	return nil
}

// DeleteAddress удаляет адрес владельца
// Заказы хранят AddressID, но удаление адреса истории не ломает:
// адрес в заказе читается через preload и может отсутствовать
func (s *AddressService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if _, err := s.getOwnedAddress(ctx, userID, addressID); err != nil {
		return err
	}

	if err := s.addressRepo.Delete(ctx, addressID); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return ErrAddressNotFound
		}
		return fmt.Errorf("failed to delete address: %w", err)
	}

	return nil
}

// getOwnedAddress загружает адрес и проверяет владельца
func (s *AddressService) getOwnedAddress(ctx context.Context, userID, addressID uuid.UUID) (*entity.Address, error) {
	address, err := s.addressRepo.GetByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	if address.UserID != userID {
		return nil, ErrForbidden
	}
	return address, nil
}
