// Package app implements the order workflow: the multi-step creation flow
// with compensation on partial failure, plus the read and status operations
// over the order store.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jcmexdev/ecommerce-orders/internal/notify"
	"github.com/jcmexdev/ecommerce-orders/internal/order/domain"
	"github.com/jcmexdev/ecommerce-orders/internal/order/ports"
)

// Notifier is the async lane used for best-effort confirmation events.
// Submit must never block; a full queue drops the event.
type Notifier interface {
	Submit(ctx context.Context, ev notify.Event) error
}

// View is the presentation shape returned by every workflow operation:
// the order merged with the customer's display name and the product's name.
// Name and price fields other than TotalPrice reflect the collaborators'
// current data, not a snapshot at order time.
type View struct {
	ID           string
	CustomerID   string
	CustomerName string
	ProductID    string
	ProductName  string
	Quantity     int
	UnitPrice    decimal.Decimal
	TotalPrice   decimal.Decimal
	Status       domain.Status
	OrderDate    time.Time
}

// Workflow coordinates the identity and inventory collaborators, the local
// order store, and the notification lane. It holds no per-request state;
// each invocation is an independent unit of work.
type Workflow struct {
	repo      ports.Repository
	customers ports.CustomerClient
	products  ports.ProductClient
	notifier  Notifier
}

func NewWorkflow(repo ports.Repository, customers ports.CustomerClient, products ports.ProductClient, notifier Notifier) *Workflow {
	return &Workflow{
		repo:      repo,
		customers: customers,
		products:  products,
		notifier:  notifier,
	}
}

// CreateOrder runs the creation flow:
//
//  1. resolve customer — failure leaves no trace
//  2. resolve product — failure leaves no trace
//  3. check availability — insufficient stock leaves no trace
//  4. persist the order as PENDING
//  5. reduce stock — on success the order becomes CONFIRMED; on failure it
//     becomes CANCELLED (kept for audit, never deleted) and the call fails
//     with ErrStockReductionFailed wrapping the cause
//  6. submit a confirmation event, best effort — a dropped or failed
//     notification never changes the CONFIRMED outcome
func (w *Workflow) CreateOrder(ctx context.Context, customerID, productID string, quantity int) (*View, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	slog.InfoContext(ctx, "creating order", "customer_id", customerID, "product_id", productID, "quantity", quantity)

	customer, err := w.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCustomerNotFound, customerID, err)
	}

	product, err := w.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrProductNotFound, productID, err)
	}

	available, err := w.products.CheckAvailability(ctx, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: availability check for %s: %v", domain.ErrProductNotFound, productID, err)
	}
	if !available {
		return nil, fmt.Errorf("%w: product %s, requested %d", domain.ErrInsufficientStock, productID, quantity)
	}

	order := &domain.Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		ProductID:  productID,
		Quantity:   quantity,
		TotalPrice: product.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Status:     domain.StatusPending,
		OrderDate:  time.Now().UTC(),
	}
	if err := w.repo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("persist pending order: %w", err)
	}

	if err := w.products.ReduceStock(ctx, productID, quantity); err != nil {
		slog.ErrorContext(ctx, "stock reduction failed, cancelling order", "order_id", order.ID, "error", err)
		order.Status = domain.StatusCancelled
		if saveErr := w.repo.Save(ctx, order); saveErr != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to cancel order after stock reduction failure",
				"order_id", order.ID, "reduce_error", err, "cancel_error", saveErr)
		}
		return nil, fmt.Errorf("%w: order %s: %v", domain.ErrStockReductionFailed, order.ID, err)
	}

	order.Status = domain.StatusConfirmed
	if err := w.repo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("confirm order %s: %w", order.ID, err)
	}
	slog.InfoContext(ctx, "order confirmed", "order_id", order.ID, "total", order.TotalPrice.String())

	// Best effort: the event is handed to the background lane and forgotten.
	if err := w.notifier.Submit(ctx, notify.NewEvent(order, customer, product)); err != nil {
		slog.WarnContext(ctx, "confirmation event not queued", "order_id", order.ID, "error", err)
	}

	return w.view(order, customer, product), nil
}

// GetOrder returns the presentation view for a single order, re-resolving
// customer and product from the collaborators.
func (w *Workflow) GetOrder(ctx context.Context, id string) (*View, error) {
	order, err := w.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	return w.enrich(ctx, order)
}

// ListOrders returns views for every stored order.
func (w *Workflow) ListOrders(ctx context.Context) ([]*View, error) {
	orders, err := w.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return w.enrichAll(ctx, orders)
}

// ListOrdersByCustomer returns views for the customer's orders.
func (w *Workflow) ListOrdersByCustomer(ctx context.Context, customerID string) ([]*View, error) {
	orders, err := w.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders for customer %s: %w", customerID, err)
	}
	return w.enrichAll(ctx, orders)
}

// UpdateStatus overwrites the order's status unconditionally — any status to
// any status. This is the back-office escape hatch and deliberately does not
// share CancelOrder's DELIVERED guard.
func (w *Workflow) UpdateStatus(ctx context.Context, id string, status domain.Status) (*View, error) {
	order, err := w.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}

	order.Status = status
	if err := w.repo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("update status of order %s: %w", id, err)
	}
	slog.InfoContext(ctx, "order status updated", "order_id", id, "status", status)

	return w.enrich(ctx, order)
}

// CancelOrder moves the order to CANCELLED unless it was already DELIVERED.
// Cancelling an already-CANCELLED order succeeds (idempotent in effect).
// The earlier stock decrement is NOT reversed; see DESIGN.md.
func (w *Workflow) CancelOrder(ctx context.Context, id string) error {
	order, err := w.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}

	if !order.Cancellable() {
		return fmt.Errorf("%w: cannot cancel delivered order %s", domain.ErrInvalidStateTransition, id)
	}

	order.Status = domain.StatusCancelled
	if err := w.repo.Save(ctx, order); err != nil {
		return fmt.Errorf("cancel order %s: %w", id, err)
	}
	slog.InfoContext(ctx, "order cancelled", "order_id", id)
	return nil
}

// enrich resolves the collaborator projections for one order.
func (w *Workflow) enrich(ctx context.Context, order *domain.Order) (*View, error) {
	customer, err := w.customers.GetCustomer(ctx, order.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCustomerNotFound, order.CustomerID, err)
	}
	product, err := w.products.GetProduct(ctx, order.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrProductNotFound, order.ProductID, err)
	}
	return w.view(order, customer, product), nil
}

// enrichAll resolves views concurrently with a bounded fan-out so a long
// order list doesn't serialize on collaborator round-trips.
func (w *Workflow) enrichAll(ctx context.Context, orders []*domain.Order) ([]*View, error) {
	views := make([]*View, len(orders))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, order := range orders {
		g.Go(func() error {
			v, err := w.enrich(ctx, order)
			if err != nil {
				return err
			}
			views[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

func (w *Workflow) view(o *domain.Order, c *domain.Customer, p *domain.Product) *View {
	return &View{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		CustomerName: c.Name,
		ProductID:    o.ProductID,
		ProductName:  p.Name,
		Quantity:     o.Quantity,
		UnitPrice:    p.Price,
		TotalPrice:   o.TotalPrice,
		Status:       o.Status,
		OrderDate:    o.OrderDate,
	}
}
