package store

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

// Monetary amounts are int64 minor units (cents).

type Product struct {
	ID            uuid.UUID
	Name          string
	Description   string
	Category      string
	Price         int64
	StockQuantity int32
	ImageURL      *string
	Rating        float64
	IsActive      bool
	IsFeatured    bool
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Status          OrderStatus
	TotalAmount     int64
	ShippingAddress []byte // jsonb
	PaymentMethod   string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice int64
	CreatedAt time.Time
}

// OrderItemDetail is an order item joined with catalog display fields.
type OrderItemDetail struct {
	OrderItem
	ProductName  string
	ProductImage *string
}

type CartItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// CartLine is a cart item joined with the live catalog fields needed to
// price and display it.
type CartLine struct {
	CartItem
	ProductName   string
	ProductPrice  int64
	StockQuantity int32
	ProductImage  *string
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Phone        *string
	AvatarURL    *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

type Address struct {
	ID         uuid.UUID
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
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

type WishlistItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	CreatedAt time.Time
}

// WishlistEntry is a wishlist item joined with its product.
type WishlistEntry struct {
	WishlistItem
	Product Product
}

type Review struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	UserID    uuid.UUID
	Rating    int32
	Comment   string
	CreatedAt time.Time
}

// ReviewDetail is a review joined with the author's display fields.
type ReviewDetail struct {
	Review
	UserFullName string
	UserAvatar   *string
}

type PaymentIntent struct {
	ID            string
	OrderID       *uuid.UUID
	UserID        uuid.UUID
	Amount        int64
	Currency      string
	Status        string
	PaymentMethod string
	ClientSecret  string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

type CategoryCount struct {
	Name  string
	Count int64
}
