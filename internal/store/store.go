// Package store provides interfaces and PostgreSQL implementations for
// the relational persistence layer.
package store

import (
	"context"

	"github.com/google/uuid"
)

// ProductSort names an ordering of catalog listings.
type ProductSort string

const (
	SortByName      ProductSort = "name"
	SortByPriceAsc  ProductSort = "price_asc"
	SortByPriceDesc ProductSort = "price_desc"
	SortByRating    ProductSort = "rating"
	SortByNewest    ProductSort = "newest"
)

// ListProductsParams filters and paginates active catalog products.
type ListProductsParams struct {
	Category *string
	Search   *string
	MinPrice *int64
	MaxPrice *int64
	SortBy   ProductSort
	Offset   int32
	Limit    int32
}

// ProductStore carries catalog reads plus the review writes.
type ProductStore interface {
	// FindActiveByID retrieves an active product by id.
	// Returns ErrProductNotFound if no active product exists with the given ID.
	FindActiveByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// List returns active products matching params plus the exact total count.
	List(ctx context.Context, params ListProductsParams) ([]Product, int64, error)

	// FindFeatured returns up to limit active featured products.
	FindFeatured(ctx context.Context, limit int32) ([]Product, error)

	// Categories returns the distinct categories of active products with counts.
	Categories(ctx context.Context) ([]CategoryCount, error)

	// FindReviews returns reviews for a product, newest first, plus the total count.
	FindReviews(ctx context.Context, productID uuid.UUID, offset, limit int32) ([]ReviewDetail, int64, error)

	// CreateReview adds a review for a product. Returns ErrAlreadyReviewed
	// when the user has already reviewed this product.
	CreateReview(ctx context.Context, productID, userID uuid.UUID, rating int32, comment string) (*Review, error)

	// RecomputeRating refreshes the product's stored average rating from
	// its reviews and returns the new value.
	RecomputeRating(ctx context.Context, productID uuid.UUID) (float64, error)
}

// CreateOrderParams is the order header to persist.
type CreateOrderParams struct {
	UserID          uuid.UUID
	Status          OrderStatus
	TotalAmount     int64
	ShippingAddress []byte
	PaymentMethod   string
	Notes           *string
}

// CreateOrderItemParams is one line item to persist; UnitPrice is the
// catalog price snapshot taken at placement time.
type CreateOrderItemParams struct {
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice int64
}

// FindOrdersParams paginates a user's orders, optionally by status.
type FindOrdersParams struct {
	UserID uuid.UUID
	Status *OrderStatus
	Offset int32
	Limit  int32
}

// OrderStore is an interface for order storage operations.
type OrderStore interface {
	// CreateOrder persists the order header, its line items and the stock
	// decrements in a single transaction. Each decrement is conditional;
	// a product without sufficient stock rolls the whole transaction back
	// with ErrInsufficientStock, so no partial order can ever be observed.
	CreateOrder(ctx context.Context, order *CreateOrderParams, items []CreateOrderItemParams) (*Order, []OrderItem, error)

	// FindByID retrieves a single order with its line items.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Order, []OrderItemDetail, error)

	// FindOrdersByUserID returns a page of the user's orders, newest first,
	// plus the exact total count.
	FindOrdersByUserID(ctx context.Context, params FindOrdersParams) ([]Order, int64, error)

	// FindItemsByOrderIDs returns line items grouped by order id.
	FindItemsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]OrderItemDetail, error)

	// Cancel flips a pending or confirmed order to cancelled and restores
	// stock for every line item, in one transaction. Returns
	// ErrOrderNotCancellable if the order is in any other status.
	Cancel(ctx context.Context, id uuid.UUID) (*Order, error)

	// UpdateStatus sets the order status unconditionally.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) (*Order, error)
}

// CartStore manages a user's cart rows.
type CartStore interface {
	// FindByUserID returns the user's cart joined with live product data.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]CartLine, error)

	// FindItem returns the cart row for a product, or ErrCartItemNotFound.
	FindItem(ctx context.Context, userID, productID uuid.UUID) (*CartItem, error)

	// Insert adds a new cart row.
	Insert(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*CartItem, error)

	// UpdateQuantity replaces the quantity of an existing cart row.
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int32) (*CartItem, error)

	// DeleteItem removes a product from the cart. Returns ErrCartItemNotFound
	// if the product was not in the cart.
	DeleteItem(ctx context.Context, userID, productID uuid.UUID) error

	// Clear removes all cart rows for the user, returning how many were removed.
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
}

// UpdateProfileParams carries the optional profile fields; nil leaves a
// field unchanged.
type UpdateProfileParams struct {
	FullName *string
	Phone    *string
}

// CreateAddressParams is a new address for a user.
type CreateAddressParams struct {
	UserID     uuid.UUID
	Label      string
	FullName   string
	Phone      *string
	Line1      string
	Line2      *string
	City       string
	State      string
	PostalCode string
	Country    string
	IsDefault  bool
}

// UpdateAddressParams carries optional address fields; nil leaves a field
// unchanged.
type UpdateAddressParams struct {
	ID         uuid.UUID
	Label      *string
	FullName   *string
	Phone      *string
	Line1      *string
	Line2      *string
	City       *string
	State      *string
	PostalCode *string
	Country    *string
	IsDefault  *bool
}

// UserStore manages users, their addresses and their wishlist.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, fullName string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (*User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL *string) error

	ListAddresses(ctx context.Context, userID uuid.UUID) ([]Address, error)
	FindAddress(ctx context.Context, id, userID uuid.UUID) (*Address, error)
	CreateAddress(ctx context.Context, params CreateAddressParams) (*Address, error)
	UpdateAddress(ctx context.Context, params UpdateAddressParams) (*Address, error)
	DeleteAddress(ctx context.Context, id, userID uuid.UUID) error
	// ClearDefaultAddress unsets is_default on all of the user's addresses.
	ClearDefaultAddress(ctx context.Context, userID uuid.UUID) error

	ListWishlist(ctx context.Context, userID uuid.UUID) ([]WishlistEntry, error)
	AddToWishlist(ctx context.Context, userID, productID uuid.UUID) (*WishlistItem, error)
	RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error
	InWishlist(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

// CreatePaymentIntentParams is a new simulated payment intent.
type CreatePaymentIntentParams struct {
	ID            string
	OrderID       *uuid.UUID
	UserID        uuid.UUID
	Amount        int64
	Currency      string
	Status        string
	PaymentMethod string
	ClientSecret  string
}

// PaymentStore persists simulated payment intents.
type PaymentStore interface {
	CreateIntent(ctx context.Context, params CreatePaymentIntentParams) (*PaymentIntent, error)
	FindIntent(ctx context.Context, id string, userID uuid.UUID) (*PaymentIntent, error)
	UpdateIntentStatus(ctx context.Context, id string, userID uuid.UUID, status string) (*PaymentIntent, error)
}
