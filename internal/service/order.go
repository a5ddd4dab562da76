package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/dkoval/shoply/internal/store"
	"github.com/dkoval/shoply/pkg/messaging"
	"github.com/dkoval/shoply/pkg/messaging/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// OrderService manages the order lifecycle.
type OrderService interface {
	// Place creates an order from the requested line items. Prices are
	// snapshotted from the catalog at placement time and stock is
	// decremented atomically; on success the user's cart is cleared.
	Place(ctx context.Context, userID uuid.UUID, order OrderCreateDto) (*OrderDto, error)

	// FindByID retrieves one of the user's orders with its line items.
	// Returns ErrAccessDenied when the order belongs to someone else.
	FindByID(ctx context.Context, userID, id uuid.UUID) (*OrderDto, error)

	// List returns a page of the user's orders, newest first.
	List(ctx context.Context, userID uuid.UUID, query OrderQuery) (*OrderPageDto, error)

	// Cancel cancels a pending or confirmed order and restores stock.
	Cancel(ctx context.Context, userID, id uuid.UUID) (*OrderDto, error)
}

type orderService struct {
	orders        store.OrderStore
	carts         store.CartStore
	products      store.ProductStore
	publisher     messaging.Publisher
	ordersCounter metric.Int64Counter
}

// NewOrderService wires the order workflow over its stores and the
// event publisher.
func NewOrderService(orders store.OrderStore, carts store.CartStore, products store.ProductStore, publisher messaging.Publisher) OrderService {
	meter := otel.Meter("shoply")
	ordersCounter, err := meter.Int64Counter("orders_created",
		metric.WithDescription("Total number of created orders"))
	if err != nil {
		panic(fmt.Sprintf("failed to create orders_created counter: %v", err))
	}
	return &orderService{
		orders:        orders,
		carts:         carts,
		products:      products,
		publisher:     publisher,
		ordersCounter: ordersCounter,
	}
}

// ShippingAddressDto is the address snapshot stored with the order.
type ShippingAddressDto struct {
	FullName   string `json:"full_name" validate:"required"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// OrderItemCreateDto names one product and quantity to order.
type OrderItemCreateDto struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int32     `json:"quantity" validate:"required,min=1"`
}

// OrderCreateDto is the payload for placing an order.
type OrderCreateDto struct {
	Items           []OrderItemCreateDto `json:"items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddressDto   `json:"shipping_address" validate:"required"`
	PaymentMethod   string               `json:"payment_method" validate:"required,oneof=card cash_on_delivery"`
	Notes           *string              `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type OrderItemDto struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name,omitempty"`
	ProductImage *string   `json:"product_image,omitempty"`
	Quantity     int32     `json:"quantity"`
	UnitPrice    int64     `json:"unit_price"`
	Subtotal     int64     `json:"subtotal"`
}

type OrderDto struct {
	ID              uuid.UUID          `json:"id"`
	UserID          uuid.UUID          `json:"user_id"`
	Status          string             `json:"status"`
	TotalAmount     int64              `json:"total_amount"`
	ShippingAddress ShippingAddressDto `json:"shipping_address"`
	PaymentMethod   string             `json:"payment_method"`
	Notes           *string            `json:"notes,omitempty"`
	Items           []OrderItemDto     `json:"items,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// OrderQuery paginates the order history, optionally by status.
type OrderQuery struct {
	Status *string
	Page   int32
	Limit  int32
}

type OrderPageDto struct {
	Orders     []OrderDto    `json:"orders"`
	Pagination PaginationDto `json:"pagination"`
}

func toOrderDto(order *store.Order, items []store.OrderItemDetail) *OrderDto {
	dto := &OrderDto{
		ID:            order.ID,
		UserID:        order.UserID,
		Status:        string(order.Status),
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		Notes:         order.Notes,
		CreatedAt:     order.CreatedAt,
	}
	// The snapshot was serialized by us, failure to parse it back is a bug.
	_ = json.Unmarshal(order.ShippingAddress, &dto.ShippingAddress)
	for _, item := range items {
		dto.Items = append(dto.Items, OrderItemDto{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Subtotal:     item.UnitPrice * int64(item.Quantity),
		})
	}
	return dto
}

func (s *orderService) Place(ctx context.Context, userID uuid.UUID, order OrderCreateDto) (*OrderDto, error) {
	if len(order.Items) == 0 {
		return nil, apperrors.ErrEmptyOrder
	}

	// Snapshot the current catalog price of every requested product.
	// Stock is checked again inside the order transaction; this pass only
	// rejects unknown or inactive products with the offending id.
	var totalAmount int64
	items := make([]store.CreateOrderItemParams, 0, len(order.Items))
	snapshots := make([]*store.Product, 0, len(order.Items))
	for _, item := range order.Items {
		product, err := s.products.FindActiveByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrProductNotFound) {
				return nil, fmt.Errorf("%s: %w", item.ProductID, apperrors.ErrProductNotFound)
			}
			return nil, err
		}
		items = append(items, store.CreateOrderItemParams{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
		snapshots = append(snapshots, product)
		totalAmount += product.Price * int64(item.Quantity)
	}

	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize shipping address: %w", err)
	}

	created, createdItems, err := s.orders.CreateOrder(ctx, &store.CreateOrderParams{
		UserID:          userID,
		Status:          store.OrderStatusPending,
		TotalAmount:     totalAmount,
		ShippingAddress: addressJSON,
		PaymentMethod:   order.PaymentMethod,
		Notes:           order.Notes,
	}, items)
	if err != nil {
		return nil, err
	}

	if _, err := s.carts.Clear(ctx, userID); err != nil {
		slog.ErrorContext(ctx, "failed to clear cart after order placement",
			"order_id", created.ID, "error", err)
	}

	if err := s.publisher.Publish(ctx, events.OrderCreatedEvent{
		OrderID:     created.ID,
		UserID:      created.UserID,
		TotalAmount: created.TotalAmount,
		CreatedAt:   created.CreatedAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish OrderCreatedEvent", "error", err)
	}
	s.ordersCounter.Add(ctx, 1)

	details := make([]store.OrderItemDetail, len(createdItems))
	for i, item := range createdItems {
		details[i] = store.OrderItemDetail{OrderItem: item, ProductName: snapshots[i].Name, ProductImage: snapshots[i].ImageURL}
	}
	return toOrderDto(created, details), nil
}

func (s *orderService) FindByID(ctx context.Context, userID, id uuid.UUID) (*OrderDto, error) {
	order, items, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.ErrAccessDenied
	}
	return toOrderDto(order, items), nil
}

func (s *orderService) List(ctx context.Context, userID uuid.UUID, query OrderQuery) (*OrderPageDto, error) {
	page, limit, offset := normalizePage(query.Page, query.Limit, 10)
	params := store.FindOrdersParams{UserID: userID, Offset: offset, Limit: limit}
	if query.Status != nil {
		status := store.OrderStatus(*query.Status)
		if !status.Valid() {
			return nil, apperrors.ErrValidation
		}
		params.Status = &status
	}

	orders, total, err := s.orders.FindOrdersByUserID(ctx, params)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	itemsByOrder, err := s.orders.FindItemsByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := &OrderPageDto{Pagination: newPagination(page, limit, total)}
	for i := range orders {
		result.Orders = append(result.Orders, *toOrderDto(&orders[i], itemsByOrder[orders[i].ID]))
	}
	return result, nil
}

func (s *orderService) Cancel(ctx context.Context, userID, id uuid.UUID) (*OrderDto, error) {
	order, _, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.ErrAccessDenied
	}

	cancelled, err := s.orders.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.OrderCancelledEvent{
		OrderID:     cancelled.ID,
		UserID:      cancelled.UserID,
		CancelledAt: time.Now().UTC(),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish OrderCancelledEvent", "error", err)
	}

	return toOrderDto(cancelled, nil), nil
}
