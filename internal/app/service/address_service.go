package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/app/repository"
	"github.com/minhvo/tiemao-backend/internal/validation"
)

var (
	ErrAddressNotFound = errors.New("address not found")
	ErrInvalidPhone    = errors.New("invalid Vietnamese phone number")
	ErrAddressFields   = errors.New("recipient, phone, street and city are required")
)

type AddressService interface {
	List(userID uint) ([]model.Address, error)
	Default(userID uint) (*model.Address, error)
	Create(userID uint, address *model.Address) error
	Update(userID uint, address *model.Address) error
	Delete(userID, addressID uint) error
	SetDefault(userID, addressID uint) error
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{addressRepo: addressRepo}
}

func validateAddress(address *model.Address) error {
	if address.Recipient == "" || address.Phone == "" || address.Street == "" || address.City == "" {
		return ErrAddressFields
	}
	if !validation.ValidVNPhone(address.Phone) {
		return ErrInvalidPhone
	}
	return nil
}

func (s *addressService) List(userID uint) ([]model.Address, error) {
	return s.addressRepo.FindByUserID(userID)
}

// Default returns the user's default address, or nil when none is marked.
func (s *addressService) Default(userID uint) (*model.Address, error) {
	address, err := s.addressRepo.FindDefault(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return address, err
}

// Create saves a new address. The user's first address becomes the default.
func (s *addressService) Create(userID uint, address *model.Address) error {
	if err := validateAddress(address); err != nil {
		return err
	}

	address.UserID = userID

	existing, err := s.addressRepo.FindByUserID(userID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		address.IsDefault = true
	}

	if err := s.addressRepo.Create(address); err != nil {
		return err
	}
	if address.IsDefault && len(existing) > 0 {
		return s.addressRepo.SetDefault(userID, address.ID)
	}
	return nil
}

func (s *addressService) owned(userID, addressID uint) (*model.Address, error) {
	address, err := s.addressRepo.FindByID(addressID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	if address.UserID != userID {
		return nil, ErrAddressNotFound
	}
	return address, nil
}

func (s *addressService) Update(userID uint, address *model.Address) error {
	if err := validateAddress(address); err != nil {
		return err
	}

	existing, err := s.owned(userID, address.ID)
	if err != nil {
		return err
	}

	existing.Recipient = address.Recipient
	existing.Phone = address.Phone
	existing.Street = address.Street
	existing.City = address.City
	existing.Postcode = address.Postcode
	return s.addressRepo.Update(existing)
}

func (s *addressService) Delete(userID, addressID uint) error {
	if _, err := s.owned(userID, addressID); err != nil {
		return err
	}
	return s.addressRepo.Delete(addressID)
}

func (s *addressService) SetDefault(userID, addressID uint) error {
	if _, err := s.owned(userID, addressID); err != nil {
		return err
	}
	return s.addressRepo.SetDefault(userID, addressID)
}
