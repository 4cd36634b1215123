// Package client talks to the storefront REST API. It backs the CLI and
// implements cart.OrderPlacer.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/go-resty/resty/v2"
)

type Client struct {
	r *resty.Client
}

// New builds a client without retries; a failed call is reported as-is.
func New(baseURL string, timeout time.Duration) *Client {
	r := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{r: r}
}

// APIError is a non-2xx answer. It matches apperr.ErrNotFound / ErrValidation
// so callers can branch the same way they would on the server side.
type APIError struct {
	Status  int
	Message string              `json:"error"`
	Fields  []apperr.FieldError `json:"fields"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "api %d: %s", e.Status, e.Message)
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "; %s %s", f.Field, f.Message)
	}
	return b.String()
}

func (e *APIError) Is(target error) bool {
	switch target {
	case apperr.ErrNotFound:
		return e.Status == http.StatusNotFound
	case apperr.ErrValidation:
		return e.Status == http.StatusBadRequest
	}
	return false
}

func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	resp, err := c.r.R().SetContext(ctx).SetResult(&out).SetError(&APIError{}).Get("/api/products")
	return out, check(resp, err)
}

func (c *Client) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	var out catalog.Product
	resp, err := c.r.R().SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&out).SetError(&APIError{}).
		Get("/api/products/{id}")
	return out, check(resp, err)
}

// CreateProduct posts the admin form with every image as an "images" part.
func (c *Client) CreateProduct(ctx context.Context, in catalog.CreateInput) (catalog.Product, error) {
	var out struct {
		Product catalog.Product `json:"product"`
	}
	req := c.r.R().SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"name":        in.Name,
			"price":       in.Price,
			"category":    in.Category,
			"description": in.Description,
			"stock":       in.Stock,
		}).
		SetResult(&out).SetError(&APIError{})

	closers, err := attach(req, "images", in.Images...)
	defer closeAll(closers)
	if err != nil {
		return catalog.Product{}, err
	}
	resp, err := req.Post("/api/products")
	return out.Product, check(resp, err)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in catalog.UpdateInput) (catalog.Product, error) {
	var out catalog.Product
	resp, err := c.r.R().SetContext(ctx).
		SetPathParam("id", id).
		SetHeader("Content-Type", "application/json").
		SetBody(in).
		SetResult(&out).SetError(&APIError{}).
		Put("/api/products/{id}")
	return out, check(resp, err)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	resp, err := c.r.R().SetContext(ctx).
		SetPathParam("id", id).
		SetError(&APIError{}).
		Delete("/api/products/{id}")
	return check(resp, err)
}

func (c *Client) ListOrders(ctx context.Context) ([]orders.Order, error) {
	var out []orders.Order
	resp, err := c.r.R().SetContext(ctx).SetResult(&out).SetError(&APIError{}).Get("/api/orders")
	return out, check(resp, err)
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	resp, err := c.r.R().SetContext(ctx).
		SetPathParam("id", id).
		SetError(&APIError{}).
		Delete("/api/orders/{id}")
	return check(resp, err)
}

// PlaceOrder submits a checkout; items travel as a JSON string field.
func (c *Client) PlaceOrder(ctx context.Context, s cart.Submission) (orders.Order, error) {
	items, err := json.Marshal(s.Items)
	if err != nil {
		return orders.Order{}, fmt.Errorf("encode items: %w", err)
	}
	var out struct {
		Order orders.Order `json:"order"`
	}
	req := c.r.R().SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"fullname": s.Fullname,
			"gcash":    s.GCash,
			"address":  s.Address,
			"items":    string(items),
			"total":    s.Total.StringFixed(2),
		}).
		SetResult(&out).SetError(&APIError{})

	closers, err := attach(req, "paymentProof", s.Proof)
	defer closeAll(closers)
	if err != nil {
		return orders.Order{}, err
	}
	resp, err := req.Post("/api/orders")
	return out.Order, check(resp, err)
}

func attach(req *resty.Request, field string, ups ...media.Upload) ([]io.Closer, error) {
	closers := make([]io.Closer, 0, len(ups))
	for _, up := range ups {
		rc, err := up.Open()
		if err != nil {
			return closers, fmt.Errorf("open %s: %w", up.Filename, err)
		}
		closers = append(closers, rc)
		req.SetFileReader(field, up.Filename, rc)
	}
	return closers, nil
}

func closeAll(cs []io.Closer) {
	for _, c := range cs {
		_ = c.Close()
	}
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{}
	}
	apiErr.Status = resp.StatusCode()
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}
	return apiErr
}
