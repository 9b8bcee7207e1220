// Package notify carries order-confirmation events to an external mail
// function. The function itself is opaque: this package only owns the event
// payload, the dispatch contract, and the background lane that keeps dispatch
// latency off the order-creation path.
package notify

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-orders/internal/order/domain"
)

// Event is the flattened snapshot of order + customer + product sent to the
// mail function. Field names match the function's expected JSON payload.
// Events are built fresh per confirmed order and never persisted.
type Event struct {
	OrderID            string          `json:"orderId"`
	CustomerEmail      string          `json:"customerEmail"`
	CustomerName       string          `json:"customerName"`
	ProductName        string          `json:"productName"`
	ProductDescription string          `json:"productDescription"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	TotalPrice         decimal.Decimal `json:"totalPrice"`
	OrderStatus        string          `json:"orderStatus"`
	OrderDate          time.Time       `json:"orderDate"`
	ProductID          string          `json:"productId"`
	UserID             string          `json:"userId"`
}

// NewEvent flattens a confirmed order with its customer and product details.
func NewEvent(o *domain.Order, c *domain.Customer, p *domain.Product) Event {
	return Event{
		OrderID:            o.ID,
		CustomerEmail:      c.Email,
		CustomerName:       c.Name,
		ProductName:        p.Name,
		ProductDescription: p.Description,
		Quantity:           o.Quantity,
		UnitPrice:          p.Price,
		TotalPrice:         o.TotalPrice,
		OrderStatus:        string(o.Status),
		OrderDate:          o.OrderDate,
		ProductID:          p.ID,
		UserID:             c.ID,
	}
}
