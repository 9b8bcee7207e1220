package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jcmexdev/ecommerce-orders/internal/order/domain"
	"github.com/jcmexdev/ecommerce-orders/internal/order/ports"
)

// CustomerClient resolves customers from the user service.
type CustomerClient struct {
	baseURL string
	client  *http.Client
}

var _ ports.CustomerClient = (*CustomerClient)(nil)

func NewCustomerClient(baseURL string, timeout time.Duration) *CustomerClient {
	return &CustomerClient{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

type customerDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (c *CustomerClient) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	var dto customerDTO
	u := fmt.Sprintf("%s/api/users/%s", c.baseURL, url.PathEscape(id))
	if err := doJSON(ctx, c.client, http.MethodGet, u, &dto); err != nil {
		return nil, err
	}
	return &domain.Customer{
		ID:    dto.ID,
		Name:  dto.Name,
		Email: dto.Email,
	}, nil
}
