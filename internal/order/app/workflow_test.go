package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/jcmexdev/ecommerce-orders/internal/notify"
	"github.com/jcmexdev/ecommerce-orders/internal/order/domain"
)

// --- fakes ---

type fakeRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[string]domain.Order)}
}

func (r *fakeRepo) Save(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = *o
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, errors.New("no such order")
	}
	return &o, nil
}

func (r *fakeRepo) FindAll(ctx context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) FindByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	all, _ := r.FindAll(ctx)
	var out []*domain.Order
	for _, o := range all {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeCustomers struct {
	customers map[string]domain.Customer
}

func (c *fakeCustomers) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	cust, ok := c.customers[id]
	if !ok {
		return nil, fmt.Errorf("user service: status 404")
	}
	return &cust, nil
}

type fakeProducts struct {
	mu         sync.Mutex
	products   map[string]domain.Product
	failReduce error
}

func (p *fakeProducts) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prod, ok := p.products[id]
	if !ok {
		return nil, fmt.Errorf("product service: status 404")
	}
	return &prod, nil
}

func (p *fakeProducts) CheckAvailability(ctx context.Context, id string, quantity int) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prod, ok := p.products[id]
	if !ok {
		return false, fmt.Errorf("product service: status 404")
	}
	return prod.StockQuantity >= quantity, nil
}

func (p *fakeProducts) ReduceStock(ctx context.Context, id string, quantity int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failReduce != nil {
		return p.failReduce
	}
	prod := p.products[id]
	if prod.StockQuantity < quantity {
		return fmt.Errorf("product service: status 409")
	}
	prod.StockQuantity -= quantity
	p.products[id] = prod
	return nil
}

func (p *fakeProducts) stock(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.products[id].StockQuantity
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (n *fakeNotifier) Submit(ctx context.Context, ev notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, ev)
	return nil
}

func (n *fakeNotifier) submitted() []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Event(nil), n.events...)
}

// --- suite ---

type WorkflowSuite struct {
	suite.Suite
	repo      *fakeRepo
	customers *fakeCustomers
	products  *fakeProducts
	notifier  *fakeNotifier
	workflow  *Workflow
}

func (s *WorkflowSuite) SetupTest() {
	s.repo = newFakeRepo()
	s.customers = &fakeCustomers{customers: map[string]domain.Customer{
		"c1": {ID: "c1", Name: "John Doe", Email: "john@example.com"},
	}}
	s.products = &fakeProducts{products: map[string]domain.Product{
		"p1": {
			ID:            "p1",
			Name:          "Laptop",
			Description:   "laptop for professionals",
			Price:         decimal.RequireFromString("10.00"),
			StockQuantity: 5,
		},
	}}
	s.notifier = &fakeNotifier{}
	s.workflow = NewWorkflow(s.repo, s.customers, s.products, s.notifier)
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func (s *WorkflowSuite) TestCreateOrderConfirmed() {
	view, err := s.workflow.CreateOrder(context.Background(), "c1", "p1", 2)
	s.Require().NoError(err)

	s.Equal(domain.StatusConfirmed, view.Status)
	s.True(view.TotalPrice.Equal(decimal.RequireFromString("20.00")), "got total %s", view.TotalPrice)
	s.Equal("John Doe", view.CustomerName)
	s.Equal("Laptop", view.ProductName)
	s.Equal(2, view.Quantity)
	s.Equal(3, s.products.stock("p1"), "stock must decrease by exactly the ordered quantity")

	stored, err := s.repo.FindByID(context.Background(), view.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusConfirmed, stored.Status)
}

func (s *WorkflowSuite) TestCreateOrderBuildsNotificationEvent() {
	view, err := s.workflow.CreateOrder(context.Background(), "c1", "p1", 2)
	s.Require().NoError(err)

	events := s.notifier.submitted()
	s.Require().Len(events, 1)
	ev := events[0]
	s.Equal(view.ID, ev.OrderID)
	s.Equal("john@example.com", ev.CustomerEmail)
	s.Equal("John Doe", ev.CustomerName)
	s.Equal("Laptop", ev.ProductName)
	s.Equal("laptop for professionals", ev.ProductDescription)
	s.Equal(2, ev.Quantity)
	s.True(ev.UnitPrice.Equal(decimal.RequireFromString("10.00")))
	s.True(ev.TotalPrice.Equal(decimal.RequireFromString("20.00")))
	s.Equal(string(domain.StatusConfirmed), ev.OrderStatus)
	s.Equal("p1", ev.ProductID)
	s.Equal("c1", ev.UserID)
}

func (s *WorkflowSuite) TestCreateOrderUnknownCustomer() {
	_, err := s.workflow.CreateOrder(context.Background(), "ghost", "p1", 1)
	s.Require().ErrorIs(err, domain.ErrCustomerNotFound)

	orders, _ := s.repo.FindAll(context.Background())
	s.Empty(orders, "no order record may be created")
	s.Equal(5, s.products.stock("p1"))
}

func (s *WorkflowSuite) TestCreateOrderUnknownProduct() {
	_, err := s.workflow.CreateOrder(context.Background(), "c1", "ghost", 1)
	s.Require().ErrorIs(err, domain.ErrProductNotFound)

	orders, _ := s.repo.FindAll(context.Background())
	s.Empty(orders)
}

func (s *WorkflowSuite) TestCreateOrderInsufficientStock() {
	s.products.products["p1"] = domain.Product{
		ID: "p1", Name: "Laptop", Price: decimal.RequireFromString("10.00"), StockQuantity: 1,
	}

	_, err := s.workflow.CreateOrder(context.Background(), "c1", "p1", 2)
	s.Require().ErrorIs(err, domain.ErrInsufficientStock)

	orders, _ := s.repo.FindAll(context.Background())
	s.Empty(orders, "no order record may be created")
	s.Equal(1, s.products.stock("p1"), "stock must be unchanged")
	s.Empty(s.notifier.submitted())
}

func (s *WorkflowSuite) TestCreateOrderZeroQuantity() {
	_, err := s.workflow.CreateOrder(context.Background(), "c1", "p1", 0)
	s.Require().Error(err)

	orders, _ := s.repo.FindAll(context.Background())
	s.Empty(orders)
}

func (s *WorkflowSuite) TestCreateOrderStockReductionFailure() {
	s.products.failReduce = errors.New("product service: status 500")

	_, err := s.workflow.CreateOrder(context.Background(), "c1", "p1", 2)
	s.Require().ErrorIs(err, domain.ErrStockReductionFailed)
	s.ErrorContains(err, "status 500", "the underlying cause must be surfaced")

	// The PENDING order is kept for audit, flipped to CANCELLED.
	orders, _ := s.repo.FindAll(context.Background())
	s.Require().Len(orders, 1)
	s.Equal(domain.StatusCancelled, orders[0].Status, "never left PENDING")
	s.Empty(s.notifier.submitted(), "no notification on a failed order")
}

func (s *WorkflowSuite) TestCreateOrderNotifierFailureDoesNotFailOrder() {
	s.notifier.err = notify.ErrQueueFull

	view, err := s.workflow.CreateOrder(context.Background(), "c1", "p1", 1)
	s.Require().NoError(err)
	s.Equal(domain.StatusConfirmed, view.Status)

	stored, err := s.repo.FindByID(context.Background(), view.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusConfirmed, stored.Status)
}

func (s *WorkflowSuite) TestGetOrderNotFound() {
	_, err := s.workflow.GetOrder(context.Background(), "nope")
	s.ErrorIs(err, domain.ErrOrderNotFound)
}

func (s *WorkflowSuite) TestGetOrderReResolvesCollaborators() {
	view, err := s.workflow.CreateOrder(context.Background(), "c1", "p1", 1)
	s.Require().NoError(err)

	// Collaborator data changed after creation: the view reflects it, but
	// the frozen total price does not.
	s.products.products["p1"] = domain.Product{
		ID: "p1", Name: "Laptop Pro", Price: decimal.RequireFromString("99.00"), StockQuantity: 4,
	}

	got, err := s.workflow.GetOrder(context.Background(), view.ID)
	s.Require().NoError(err)
	s.Equal("Laptop Pro", got.ProductName)
	s.True(got.TotalPrice.Equal(decimal.RequireFromString("10.00")), "total price is frozen at creation")
}

func (s *WorkflowSuite) TestListOrdersByCustomer() {
	s.customers.customers["c2"] = domain.Customer{ID: "c2", Name: "Jane", Email: "jane@example.com"}

	_, err := s.workflow.CreateOrder(context.Background(), "c1", "p1", 1)
	s.Require().NoError(err)
	_, err = s.workflow.CreateOrder(context.Background(), "c2", "p1", 1)
	s.Require().NoError(err)

	views, err := s.workflow.ListOrdersByCustomer(context.Background(), "c1")
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.Equal("c1", views[0].CustomerID)

	all, err := s.workflow.ListOrders(context.Background())
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *WorkflowSuite) TestUpdateStatusIsPermissive() {
	view, err := s.workflow.CreateOrder(context.Background(), "c1", "p1", 1)
	s.Require().NoError(err)

	// Any status to any status, including backwards out of DELIVERED.
	got, err := s.workflow.UpdateStatus(context.Background(), view.ID, domain.StatusDelivered)
	s.Require().NoError(err)
	s.Equal(domain.StatusDelivered, got.Status)

	got, err = s.workflow.UpdateStatus(context.Background(), view.ID, domain.StatusPending)
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, got.Status)
}

func (s *WorkflowSuite) TestUpdateStatusUnknownOrder() {
	_, err := s.workflow.UpdateStatus(context.Background(), "nope", domain.StatusShipped)
	s.ErrorIs(err, domain.ErrOrderNotFound)
}

func (s *WorkflowSuite) TestCancelConfirmedOrder() {
	view, err := s.workflow.CreateOrder(context.Background(), "c1", "p1", 1)
	s.Require().NoError(err)

	s.Require().NoError(s.workflow.CancelOrder(context.Background(), view.ID))

	stored, _ := s.repo.FindByID(context.Background(), view.ID)
	s.Equal(domain.StatusCancelled, stored.Status)

	// Cancelling again is idempotent in effect.
	s.Require().NoError(s.workflow.CancelOrder(context.Background(), view.ID))
	stored, _ = s.repo.FindByID(context.Background(), view.ID)
	s.Equal(domain.StatusCancelled, stored.Status)
}

func (s *WorkflowSuite) TestCancelDeliveredOrderRejected() {
	view, err := s.workflow.CreateOrder(context.Background(), "c1", "p1", 1)
	s.Require().NoError(err)
	_, err = s.workflow.UpdateStatus(context.Background(), view.ID, domain.StatusDelivered)
	s.Require().NoError(err)

	err = s.workflow.CancelOrder(context.Background(), view.ID)
	s.Require().ErrorIs(err, domain.ErrInvalidStateTransition)

	stored, _ := s.repo.FindByID(context.Background(), view.ID)
	s.Equal(domain.StatusDelivered, stored.Status, "status must be unchanged")
}

func (s *WorkflowSuite) TestCancelUnknownOrder() {
	err := s.workflow.CancelOrder(context.Background(), "nope")
	s.ErrorIs(err, domain.ErrOrderNotFound)
}

func (s *WorkflowSuite) TestCancelDoesNotRestock() {
	view, err := s.workflow.CreateOrder(context.Background(), "c1", "p1", 2)
	s.Require().NoError(err)
	s.Equal(3, s.products.stock("p1"))

	s.Require().NoError(s.workflow.CancelOrder(context.Background(), view.ID))
	s.Equal(3, s.products.stock("p1"), "cancellation never restores stock")
}

func (s *WorkflowSuite) TestConcurrentCreatesDoNotInterfere() {
	s.products.products["p1"] = domain.Product{
		ID: "p1", Name: "Laptop", Price: decimal.RequireFromString("10.00"), StockQuantity: 100,
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.workflow.CreateOrder(context.Background(), "c1", "p1", 1)
			s.NoError(err)
		}()
	}
	wg.Wait()

	orders, _ := s.repo.FindAll(context.Background())
	s.Len(orders, 10)
	s.Equal(90, s.products.stock("p1"))
}
