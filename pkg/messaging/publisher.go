// Package messaging defines the event publishing contract.
package messaging

import (
	"context"
)

// Subjects of the events published by the order workflow.
const (
	OrdersCreatedSubject   = "orders.created"
	OrdersCancelledSubject = "orders.cancelled"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards all events. Used when messaging is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(_ context.Context, _ Event) error {
	return nil
}
