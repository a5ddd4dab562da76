package store

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id, user_id, status, total_amount, shipping_address, payment_method, notes, created_at, updated_at`
const orderItemColumns = `id, order_id, product_id, quantity, unit_price, created_at`

// PgOrderStore implements OrderStore on PostgreSQL.
type PgOrderStore struct {
	db *pgxpool.Pool
}

func NewPgOrderStore(db *pgxpool.Pool) *PgOrderStore {
	return &PgOrderStore{db: db}
}

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalAmount, &o.ShippingAddress,
		&o.PaymentMethod, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
}

// CreateOrder inserts the header, the line items and the conditional stock
// decrements in one transaction. A decrement that matches no row means the
// product is gone, inactive, or short on stock; the transaction rolls back
// and nothing is persisted.
func (p *PgOrderStore) CreateOrder(ctx context.Context, order *CreateOrderParams, items []CreateOrderItemParams) (*Order, []OrderItem, error) {
	var created Order
	var createdItems []OrderItem

	txErr := withTx(ctx, p.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO orders (id, user_id, status, total_amount, shipping_address, payment_method, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+orderColumns,
			uuid.New(), order.UserID, order.Status, order.TotalAmount,
			order.ShippingAddress, order.PaymentMethod, order.Notes)
		if err := scanOrder(row, &created); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		createdItems = make([]OrderItem, 0, len(items))
		for _, item := range items {
			var oi OrderItem
			row := tx.QueryRow(ctx, `
				INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING `+orderItemColumns,
				uuid.New(), created.ID, item.ProductID, item.Quantity, item.UnitPrice)
			if err := row.Scan(&oi.ID, &oi.OrderID, &oi.ProductID, &oi.Quantity, &oi.UnitPrice, &oi.CreatedAt); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			createdItems = append(createdItems, oi)

			ct, err := tx.Exec(ctx, `
				UPDATE products
				SET stock_quantity = stock_quantity - $2, updated_at = now()
				WHERE id = $1 AND is_active AND stock_quantity >= $2`,
				item.ProductID, item.Quantity)
			if err != nil {
				return fmt.Errorf("failed to decrement stock for product %s: %w", item.ProductID, err)
			}
			if ct.RowsAffected() == 0 {
				return fmt.Errorf("product %s: %w", item.ProductID, apperrors.ErrInsufficientStock)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, nil, txErr
	}

	return &created, createdItems, nil
}

func (p *PgOrderStore) FindByID(ctx context.Context, id uuid.UUID) (*Order, []OrderItemDetail, error) {
	var order Order
	row := p.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err := scanOrder(row, &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.ErrOrderNotFound
		}
		return nil, nil, fmt.Errorf("failed to find order: %w", err)
	}

	itemsByOrder, err := p.FindItemsByOrderIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, nil, err
	}
	return &order, itemsByOrder[id], nil
}

func (p *PgOrderStore) FindOrdersByUserID(ctx context.Context, params FindOrdersParams) ([]Order, int64, error) {
	countQuery := `SELECT count(*) FROM orders WHERE user_id = $1`
	listQuery := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1`
	args := []any{params.UserID}
	if params.Status != nil {
		countQuery += ` AND status = $2`
		listQuery += ` AND status = $2`
		args = append(args, *params.Status)
	}

	var total int64
	if err := p.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	listQuery += fmt.Sprintf(` ORDER BY created_at DESC OFFSET $%d LIMIT $%d`, len(args)+1, len(args)+2)
	args = append(args, params.Offset, params.Limit)

	rows, err := p.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find user orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read orders: %w", err)
	}
	return orders, total, nil
}

func (p *PgOrderStore) FindItemsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]OrderItemDetail, error) {
	if len(orderIDs) == 0 {
		return map[uuid.UUID][]OrderItemDetail{}, nil
	}

	rows, err := p.db.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, oi.created_at,
		       p.name, p.image_url
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.created_at`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to find order items: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]OrderItemDetail, len(orderIDs))
	for rows.Next() {
		var item OrderItemDetail
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.UnitPrice, &item.CreatedAt, &item.ProductName, &item.ProductImage); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}
	return result, nil
}

func (p *PgOrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) (*Order, error) {
	var updated Order
	row := p.db.QueryRow(ctx, `
		UPDATE orders
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		id, status)
	if err := scanOrder(row, &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return &updated, nil
}

// Cancel marks the order cancelled and restores the stock consumed by its
// line items, in one transaction. The status update is conditional, so a
// concurrent shipment cannot be cancelled away.
func (p *PgOrderStore) Cancel(ctx context.Context, id uuid.UUID) (*Order, error) {
	var cancelled Order

	txErr := withTx(ctx, p.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE orders
			SET status = $2, updated_at = now()
			WHERE id = $1 AND status IN ($3, $4)
			RETURNING `+orderColumns,
			id, OrderStatusCancelled, OrderStatusPending, OrderStatusConfirmed)
		if err := scanOrder(row, &cancelled); err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("failed to cancel order: %w", err)
			}
			// No row matched: missing order or one past the point of no return.
			var status OrderStatus
			findErr := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&status)
			if errors.Is(findErr, pgx.ErrNoRows) {
				return apperrors.ErrOrderNotFound
			}
			if findErr != nil {
				return fmt.Errorf("failed to find order: %w", findErr)
			}
			return fmt.Errorf("status is %s: %w", status, apperrors.ErrOrderNotCancellable)
		}

		rows, err := tx.Query(ctx, `SELECT product_id, quantity FROM order_items WHERE order_id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to find order items: %w", err)
		}
		type restore struct {
			productID uuid.UUID
			quantity  int32
		}
		var restores []restore
		for rows.Next() {
			var r restore
			if err := rows.Scan(&r.productID, &r.quantity); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan order item: %w", err)
			}
			restores = append(restores, r)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to read order items: %w", err)
		}

		for _, r := range restores {
			if _, err := tx.Exec(ctx, `
				UPDATE products
				SET stock_quantity = stock_quantity + $2, updated_at = now()
				WHERE id = $1`, r.productID, r.quantity); err != nil {
				return fmt.Errorf("failed to restore stock for product %s: %w", r.productID, err)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &cancelled, nil
}
