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

const paymentColumns = `id, order_id, user_id, amount, currency, status,
	payment_method, client_secret, created_at, updated_at`

// PgPaymentStore implements PaymentStore on PostgreSQL.
type PgPaymentStore struct {
	db *pgxpool.Pool
}

func NewPgPaymentStore(db *pgxpool.Pool) *PgPaymentStore {
	return &PgPaymentStore{db: db}
}

func scanPaymentIntent(row pgx.Row, p *PaymentIntent) error {
	return row.Scan(&p.ID, &p.OrderID, &p.UserID, &p.Amount, &p.Currency,
		&p.Status, &p.PaymentMethod, &p.ClientSecret, &p.CreatedAt, &p.UpdatedAt)
}

func (s *PgPaymentStore) CreateIntent(ctx context.Context, params CreatePaymentIntentParams) (*PaymentIntent, error) {
	var intent PaymentIntent
	row := s.db.QueryRow(ctx, `
		INSERT INTO payment_intents (id, order_id, user_id, amount, currency,
			status, payment_method, client_secret)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+paymentColumns,
		params.ID, params.OrderID, params.UserID, params.Amount, params.Currency,
		params.Status, params.PaymentMethod, params.ClientSecret)
	if err := scanPaymentIntent(row, &intent); err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return &intent, nil
}

func (s *PgPaymentStore) FindIntent(ctx context.Context, id string, userID uuid.UUID) (*PaymentIntent, error) {
	var intent PaymentIntent
	row := s.db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payment_intents WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err := scanPaymentIntent(row, &intent); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to find payment intent: %w", err)
	}
	return &intent, nil
}

func (s *PgPaymentStore) UpdateIntentStatus(ctx context.Context, id string, userID uuid.UUID, status string) (*PaymentIntent, error) {
	var intent PaymentIntent
	row := s.db.QueryRow(ctx, `
		UPDATE payment_intents
		SET status = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+paymentColumns,
		id, userID, status)
	if err := scanPaymentIntent(row, &intent); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to update payment intent: %w", err)
	}
	return &intent, nil
}
