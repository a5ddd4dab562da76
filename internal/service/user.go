package service

import (
	"context"
	"time"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/dkoval/shoply/internal/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService manages profiles, addresses and the wishlist.
type UserService interface {
	Profile(ctx context.Context, userID uuid.UUID) (*UserDto, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req ProfileUpdateDto) (*UserDto, error)

	// ChangePassword verifies the current password before replacing it.
	// Returns ErrInvalidCredentials when the current password is wrong.
	ChangePassword(ctx context.Context, userID uuid.UUID, req PasswordChangeDto) error

	Addresses(ctx context.Context, userID uuid.UUID) ([]AddressDto, error)
	AddAddress(ctx context.Context, userID uuid.UUID, req AddressCreateDto) (*AddressDto, error)
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, req AddressUpdateDto) (*AddressDto, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error

	Wishlist(ctx context.Context, userID uuid.UUID) ([]WishlistEntryDto, error)
	AddToWishlist(ctx context.Context, userID, productID uuid.UUID) (*WishlistEntryDto, error)
	RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error
}

type userService struct {
	users    store.UserStore
	products store.ProductStore
}

func NewUserService(users store.UserStore, products store.ProductStore) UserService {
	return &userService{users: users, products: products}
}

// ProfileUpdateDto carries the editable profile fields; nil fields are
// left unchanged.
type ProfileUpdateDto struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=200"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

// PasswordChangeDto is the payload for replacing the account password.
type PasswordChangeDto struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type AddressDto struct {
	ID         uuid.UUID `json:"id"`
	Label      string    `json:"label"`
	FullName   string    `json:"full_name"`
	Phone      *string   `json:"phone,omitempty"`
	Line1      string    `json:"line1"`
	Line2      *string   `json:"line2,omitempty"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
}

// AddressCreateDto is the payload for adding an address.
type AddressCreateDto struct {
	Label      string  `json:"label" validate:"required,max=50"`
	FullName   string  `json:"full_name" validate:"required,max=200"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Line1      string  `json:"line1" validate:"required,max=200"`
	Line2      *string `json:"line2,omitempty" validate:"omitempty,max=200"`
	City       string  `json:"city" validate:"required,max=100"`
	State      string  `json:"state" validate:"max=100"`
	PostalCode string  `json:"postal_code" validate:"required,max=20"`
	Country    string  `json:"country" validate:"required,max=100"`
	IsDefault  bool    `json:"is_default"`
}

// AddressUpdateDto carries optional address fields; nil leaves a field
// unchanged.
type AddressUpdateDto struct {
	Label      *string `json:"label,omitempty" validate:"omitempty,max=50"`
	FullName   *string `json:"full_name,omitempty" validate:"omitempty,max=200"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Line1      *string `json:"line1,omitempty" validate:"omitempty,max=200"`
	Line2      *string `json:"line2,omitempty" validate:"omitempty,max=200"`
	City       *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State      *string `json:"state,omitempty" validate:"omitempty,max=100"`
	PostalCode *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Country    *string `json:"country,omitempty" validate:"omitempty,max=100"`
	IsDefault  *bool   `json:"is_default,omitempty"`
}

type WishlistEntryDto struct {
	Product ProductDto `json:"product"`
	AddedAt time.Time  `json:"added_at"`
}

func toAddressDto(a *store.Address) AddressDto {
	return AddressDto{
		ID:         a.ID,
		Label:      a.Label,
		FullName:   a.FullName,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		IsDefault:  a.IsDefault,
		CreatedAt:  a.CreatedAt,
	}
}

func (s *userService) Profile(ctx context.Context, userID uuid.UUID) (*UserDto, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := toUserDto(user)
	return &dto, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req ProfileUpdateDto) (*UserDto, error) {
	user, err := s.users.UpdateProfile(ctx, userID, store.UpdateProfileParams{
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		return nil, err
	}
	dto := toUserDto(user)
	return &dto, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, req PasswordChangeDto) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

func (s *userService) Addresses(ctx context.Context, userID uuid.UUID) ([]AddressDto, error) {
	addresses, err := s.users.ListAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	dtos := make([]AddressDto, len(addresses))
	for i := range addresses {
		dtos[i] = toAddressDto(&addresses[i])
	}
	return dtos, nil
}

func (s *userService) AddAddress(ctx context.Context, userID uuid.UUID, req AddressCreateDto) (*AddressDto, error) {
	if req.IsDefault {
		if err := s.users.ClearDefaultAddress(ctx, userID); err != nil {
			return nil, err
		}
	}
	address, err := s.users.CreateAddress(ctx, store.CreateAddressParams{
		UserID:     userID,
		Label:      req.Label,
		FullName:   req.FullName,
		Phone:      req.Phone,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	})
	if err != nil {
		return nil, err
	}
	dto := toAddressDto(address)
	return &dto, nil
}

func (s *userService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, req AddressUpdateDto) (*AddressDto, error) {
	// Ownership check before touching the row.
	if _, err := s.users.FindAddress(ctx, addressID, userID); err != nil {
		return nil, err
	}
	if req.IsDefault != nil && *req.IsDefault {
		if err := s.users.ClearDefaultAddress(ctx, userID); err != nil {
			return nil, err
		}
	}
	address, err := s.users.UpdateAddress(ctx, store.UpdateAddressParams{
		ID:         addressID,
		Label:      req.Label,
		FullName:   req.FullName,
		Phone:      req.Phone,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	})
	if err != nil {
		return nil, err
	}
	dto := toAddressDto(address)
	return &dto, nil
}

func (s *userService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.users.DeleteAddress(ctx, addressID, userID)
}

func (s *userService) Wishlist(ctx context.Context, userID uuid.UUID) ([]WishlistEntryDto, error) {
	entries, err := s.users.ListWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	dtos := make([]WishlistEntryDto, len(entries))
	for i, e := range entries {
		dtos[i] = WishlistEntryDto{Product: toProductDto(&e.Product), AddedAt: e.CreatedAt}
	}
	return dtos, nil
}

func (s *userService) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) (*WishlistEntryDto, error) {
	product, err := s.products.FindActiveByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	item, err := s.users.AddToWishlist(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	return &WishlistEntryDto{Product: toProductDto(product), AddedAt: item.CreatedAt}, nil
}

func (s *userService) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	return s.users.RemoveFromWishlist(ctx, userID, productID)
}
