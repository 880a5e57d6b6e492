// Package catalog fetches product identity from the remote product service.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"stockroom/internal/domain"
)

// ErrUnavailable covers every way a lookup can fail to produce an identity.
var ErrUnavailable = errors.New("catalog: product unavailable")

const maxBody = 64 << 10

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		timeout: timeout,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// productResponse accepts the product-service body ({id, nombre, precio})
// and the English field names.
type productResponse struct {
	ID     int64            `json:"id"`
	Nombre string           `json:"nombre"`
	Precio *decimal.Decimal `json:"precio"`
	Name   string           `json:"name"`
	Price  *decimal.Decimal `json:"price"`
}

func (p productResponse) name() string {
	if p.Nombre != "" {
		return p.Nombre
	}
	return p.Name
}

func (p productResponse) price() *decimal.Decimal {
	if p.Precio != nil {
		return p.Precio
	}
	return p.Price
}

// Fetch performs a single GET for the product. It does not retry.
func (c *Client) Fetch(ctx context.Context, productID int64) (domain.ProductIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + "/api/v1/products/" + strconv.FormatInt(productID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.ProductIdentity{}, unavailable(productID, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ProductIdentity{}, unavailable(productID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return domain.ProductIdentity{}, unavailable(productID, fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return domain.ProductIdentity{}, unavailable(productID, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return domain.ProductIdentity{}, unavailable(productID, errors.New("empty body"))
	}

	var p productResponse
	if err := json.Unmarshal(body, &p); err != nil {
		return domain.ProductIdentity{}, unavailable(productID, fmt.Errorf("decode: %w", err))
	}
	name := p.name()
	if p.ID != productID || name == "" {
		return domain.ProductIdentity{}, unavailable(productID, fmt.Errorf("incomplete product (id=%d name=%q)", p.ID, name))
	}

	price := decimal.Zero
	if pp := p.price(); pp != nil {
		price = *pp
	}
	if price.IsNegative() {
		return domain.ProductIdentity{}, unavailable(productID, fmt.Errorf("negative price %s", price))
	}
	return domain.ProductIdentity{ID: p.ID, Name: name, Price: price}, nil
}

func unavailable(productID int64, cause error) error {
	return fmt.Errorf("%w: product %d: %v", ErrUnavailable, productID, cause)
}
