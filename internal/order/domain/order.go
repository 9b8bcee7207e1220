package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a single purchase attempt. TotalPrice is computed once at creation
// from the product's unit price and is never recomputed, even if the product's
// price changes later.
type Order struct {
	ID         string
	CustomerID string
	ProductID  string
	Quantity   int
	TotalPrice decimal.Decimal
	Status     Status
	OrderDate  time.Time
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus validates a status string received over the wire.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

// Cancellable reports whether the order may still be cancelled.
// DELIVERED is terminal; CANCELLED orders can be "cancelled" again
// (idempotent in effect).
func (o *Order) Cancellable() bool {
	return o.Status != StatusDelivered
}
