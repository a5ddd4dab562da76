// Package events holds the wire representation of domain events.
package events

import (
	"encoding/json"
	"time"

	"github.com/dkoval/shoply/pkg/messaging"
	"github.com/google/uuid"
)

type OrderCreatedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	UserID      uuid.UUID `json:"user_id"`
	TotalAmount int64     `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

func (o OrderCreatedEvent) Subject() string {
	return messaging.OrdersCreatedSubject
}

func (o OrderCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(o)
}

type OrderCancelledEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	UserID      uuid.UUID `json:"user_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

func (o OrderCancelledEvent) Subject() string {
	return messaging.OrdersCancelledSubject
}

func (o OrderCancelledEvent) Payload() ([]byte, error) {
	return json.Marshal(o)
}
