package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/dkoval/shoply/internal/store"
	"github.com/google/uuid"
)

// Payment intent statuses for the simulated provider.
const (
	PaymentStatusRequiresConfirmation = "requires_confirmation"
	PaymentStatusSucceeded            = "succeeded"
)

// PaymentService simulates a card payment provider. Intents are created
// against an order's amount and confirmed in a second step, the way a
// real provider's client secret flow works.
type PaymentService interface {
	// CreateIntent opens a payment intent for one of the user's orders.
	CreateIntent(ctx context.Context, userID uuid.UUID, req PaymentIntentCreateDto) (*PaymentIntentDto, error)

	// Confirm transitions an intent to succeeded.
	Confirm(ctx context.Context, userID uuid.UUID, intentID string) (*PaymentIntentDto, error)
}

type paymentService struct {
	payments store.PaymentStore
	orders   store.OrderStore
}

func NewPaymentService(payments store.PaymentStore, orders store.OrderStore) PaymentService {
	return &paymentService{payments: payments, orders: orders}
}

// PaymentIntentCreateDto is the payload for opening an intent.
type PaymentIntentCreateDto struct {
	OrderID       uuid.UUID `json:"order_id" validate:"required"`
	PaymentMethod string    `json:"payment_method" validate:"required,oneof=card"`
}

type PaymentIntentDto struct {
	ID            string     `json:"id"`
	OrderID       *uuid.UUID `json:"order_id,omitempty"`
	Amount        int64      `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"payment_method"`
	ClientSecret  string     `json:"client_secret,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toPaymentIntentDto(p *store.PaymentIntent) *PaymentIntentDto {
	return &PaymentIntentDto{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        p.Status,
		PaymentMethod: p.PaymentMethod,
		ClientSecret:  p.ClientSecret,
		CreatedAt:     p.CreatedAt,
	}
}

func randomToken(prefix string) (string, error) {
	raw := make([]byte, 12)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return prefix + hex.EncodeToString(raw), nil
}

func (s *paymentService) CreateIntent(ctx context.Context, userID uuid.UUID, req PaymentIntentCreateDto) (*PaymentIntentDto, error) {
	order, _, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.ErrAccessDenied
	}

	id, err := randomToken("pi_")
	if err != nil {
		return nil, err
	}
	secret, err := randomToken(id + "_secret_")
	if err != nil {
		return nil, err
	}

	orderID := order.ID
	intent, err := s.payments.CreateIntent(ctx, store.CreatePaymentIntentParams{
		ID:            id,
		OrderID:       &orderID,
		UserID:        userID,
		Amount:        order.TotalAmount,
		Currency:      "usd",
		Status:        PaymentStatusRequiresConfirmation,
		PaymentMethod: req.PaymentMethod,
		ClientSecret:  secret,
	})
	if err != nil {
		return nil, err
	}
	return toPaymentIntentDto(intent), nil
}

func (s *paymentService) Confirm(ctx context.Context, userID uuid.UUID, intentID string) (*PaymentIntentDto, error) {
	if _, err := s.payments.FindIntent(ctx, intentID, userID); err != nil {
		return nil, err
	}
	intent, err := s.payments.UpdateIntentStatus(ctx, intentID, userID, PaymentStatusSucceeded)
	if err != nil {
		return nil, err
	}
	// A successful payment confirms the owning order.
	if intent.OrderID != nil {
		if _, err := s.orders.UpdateStatus(ctx, *intent.OrderID, store.OrderStatusConfirmed); err != nil {
			return nil, err
		}
	}
	return toPaymentIntentDto(intent), nil
}
