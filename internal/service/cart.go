package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/dkoval/shoply/internal/store"
	"github.com/google/uuid"
)

// CartService manages a user's shopping cart.
type CartService interface {
	// Get returns the user's cart with live prices and a grand total.
	Get(ctx context.Context, userID uuid.UUID) (*CartDto, error)

	// AddItem puts a product in the cart, merging quantities when the
	// product is already there. The merged quantity is capped at the
	// available stock.
	AddItem(ctx context.Context, userID uuid.UUID, item CartAddDto) (*CartDto, error)

	// UpdateItem replaces the quantity of a cart line.
	// Returns ErrCartItemNotFound if the product is not in the cart.
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*CartDto, error)

	// RemoveItem removes a product from the cart.
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDto, error)

	// Clear empties the cart, returning how many lines were removed.
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
}

type cartService struct {
	carts    store.CartStore
	products store.ProductStore
}

func NewCartService(carts store.CartStore, products store.ProductStore) CartService {
	return &cartService{carts: carts, products: products}
}

type CartItemDto struct {
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	ProductImage  *string   `json:"product_image,omitempty"`
	UnitPrice     int64     `json:"unit_price"`
	Quantity      int32     `json:"quantity"`
	Subtotal      int64     `json:"subtotal"`
	StockQuantity int32     `json:"stock_quantity"`
	AddedAt       time.Time `json:"added_at"`
}

type CartDto struct {
	Items      []CartItemDto `json:"items"`
	TotalItems int32         `json:"total_items"`
	Total      int64         `json:"total"`
}

// CartAddDto is the payload for adding a product to the cart.
type CartAddDto struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int32     `json:"quantity" validate:"required,min=1"`
}

func toCartDto(lines []store.CartLine) *CartDto {
	dto := &CartDto{Items: make([]CartItemDto, len(lines))}
	for i, line := range lines {
		subtotal := line.ProductPrice * int64(line.Quantity)
		dto.Items[i] = CartItemDto{
			ProductID:     line.ProductID,
			ProductName:   line.ProductName,
			ProductImage:  line.ProductImage,
			UnitPrice:     line.ProductPrice,
			Quantity:      line.Quantity,
			Subtotal:      subtotal,
			StockQuantity: line.StockQuantity,
			AddedAt:       line.CreatedAt,
		}
		dto.TotalItems += line.Quantity
		dto.Total += subtotal
	}
	return dto
}

func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*CartDto, error) {
	lines, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toCartDto(lines), nil
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, item CartAddDto) (*CartDto, error) {
	product, err := s.products.FindActiveByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if product.StockQuantity < item.Quantity {
		return nil, fmt.Errorf("product %s: %w", product.ID, apperrors.ErrInsufficientStock)
	}

	existing, err := s.carts.FindItem(ctx, userID, item.ProductID)
	switch {
	case err == nil:
		quantity := existing.Quantity + item.Quantity
		if quantity > product.StockQuantity {
			quantity = product.StockQuantity
		}
		if _, err := s.carts.UpdateQuantity(ctx, existing.ID, quantity); err != nil {
			return nil, err
		}
	case errors.Is(err, apperrors.ErrCartItemNotFound):
		if _, err := s.carts.Insert(ctx, userID, item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.Get(ctx, userID)
}

func (s *cartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*CartDto, error) {
	if quantity < 1 {
		return nil, apperrors.ErrValidation
	}
	product, err := s.products.FindActiveByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.StockQuantity < quantity {
		return nil, fmt.Errorf("product %s: %w", product.ID, apperrors.ErrInsufficientStock)
	}

	existing, err := s.carts.FindItem(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if _, err := s.carts.UpdateQuantity(ctx, existing.ID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDto, error) {
	if err := s.carts.DeleteItem(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.carts.Clear(ctx, userID)
}
