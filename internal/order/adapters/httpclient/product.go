package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-orders/internal/order/domain"
	"github.com/jcmexdev/ecommerce-orders/internal/order/ports"
)

// ProductClient talks to the product service for reads, availability checks,
// and stock decrements.
type ProductClient struct {
	baseURL string
	client  *http.Client
}

var _ ports.ProductClient = (*ProductClient)(nil)

func NewProductClient(baseURL string, timeout time.Duration) *ProductClient {
	return &ProductClient{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

type productDTO struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
}

type availabilityDTO struct {
	Available bool `json:"available"`
}

func (c *ProductClient) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var dto productDTO
	u := fmt.Sprintf("%s/api/products/%s", c.baseURL, url.PathEscape(id))
	if err := doJSON(ctx, c.client, http.MethodGet, u, &dto); err != nil {
		return nil, err
	}
	return &domain.Product{
		ID:            dto.ID,
		Name:          dto.Name,
		Description:   dto.Description,
		Price:         dto.Price,
		StockQuantity: dto.StockQuantity,
	}, nil
}

func (c *ProductClient) CheckAvailability(ctx context.Context, id string, quantity int) (bool, error) {
	var dto availabilityDTO
	u := fmt.Sprintf("%s/api/products/%s/availability?quantity=%d", c.baseURL, url.PathEscape(id), quantity)
	if err := doJSON(ctx, c.client, http.MethodGet, u, &dto); err != nil {
		return false, err
	}
	return dto.Available, nil
}

// ReduceStock decrements stock by quantity. The product service re-checks
// stock under its own lock, so a rejected decrement comes back as a non-2xx
// status and is surfaced as an error here.
func (c *ProductClient) ReduceStock(ctx context.Context, id string, quantity int) error {
	u := fmt.Sprintf("%s/api/products/%s/reduce-stock?quantity=%d", c.baseURL, url.PathEscape(id), quantity)
	return doJSON(ctx, c.client, http.MethodPut, u, nil)
}
