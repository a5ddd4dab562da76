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

const cartColumns = `id, user_id, product_id, quantity, created_at, updated_at`

// PgCartStore implements CartStore on PostgreSQL.
type PgCartStore struct {
	db *pgxpool.Pool
}

func NewPgCartStore(db *pgxpool.Pool) *PgCartStore {
	return &PgCartStore{db: db}
}

func scanCartItem(row pgx.Row, c *CartItem) error {
	return row.Scan(&c.ID, &c.UserID, &c.ProductID, &c.Quantity, &c.CreatedAt, &c.UpdatedAt)
}

func (s *PgCartStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at,
		       p.name, p.price, p.stock_quantity, p.image_url
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find cart items: %w", err)
	}
	defer rows.Close()

	var lines []CartLine
	for rows.Next() {
		var line CartLine
		if err := rows.Scan(&line.ID, &line.UserID, &line.ProductID, &line.Quantity,
			&line.CreatedAt, &line.UpdatedAt, &line.ProductName, &line.ProductPrice,
			&line.StockQuantity, &line.ProductImage); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cart items: %w", err)
	}
	return lines, nil
}

func (s *PgCartStore) FindItem(ctx context.Context, userID, productID uuid.UUID) (*CartItem, error) {
	var item CartItem
	row := s.db.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM cart_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err := scanCartItem(row, &item); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return &item, nil
}

func (s *PgCartStore) Insert(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*CartItem, error) {
	var item CartItem
	row := s.db.QueryRow(ctx, `
		INSERT INTO cart_items (id, user_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING `+cartColumns,
		uuid.New(), userID, productID, quantity)
	if err := scanCartItem(row, &item); err != nil {
		return nil, fmt.Errorf("failed to insert cart item: %w", err)
	}
	return &item, nil
}

func (s *PgCartStore) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int32) (*CartItem, error) {
	var item CartItem
	row := s.db.QueryRow(ctx, `
		UPDATE cart_items
		SET quantity = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+cartColumns,
		id, quantity)
	if err := scanCartItem(row, &item); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return &item, nil
}

func (s *PgCartStore) DeleteItem(ctx context.Context, userID, productID uuid.UUID) error {
	ct, err := s.db.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrCartItemNotFound
	}
	return nil
}

func (s *PgCartStore) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	ct, err := s.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return ct.RowsAffected(), nil
}
