package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/httpx"
	"github.com/ariefcatur/go-storefront/internal/logx"
	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func newServer(t *testing.T) *Client {
	t.Helper()
	log := logx.Discard()
	fs := afero.NewMemMapFs()
	ms := media.NewFileStoreFs(fs)

	r := httpx.NewRouter(log, fs)
	(&httpx.ProductsHandler{Service: catalog.NewService(catalog.NewMemoryStore(), ms, events.Nop{}, log), Log: log}).Register(r)
	(&httpx.OrdersHandler{Service: orders.NewService(orders.NewMemoryStore(), ms, events.Nop{}, log), Log: log}).Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second)
}

func TestCatalogRoundTrip(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	p, err := c.CreateProduct(ctx, catalog.CreateInput{
		Name: "Deck A", Price: "10", Category: "Playing-Cards", Stock: "5",
		Images: []media.Upload{media.FromBytes("a.png", pngBytes), media.FromBytes("b.png", pngBytes)},
	})
	require.NoError(t, err)
	assert.Len(t, p.Images, 2)
	assert.Equal(t, catalog.CategoryPlayingCards, p.Category)

	price := decimal.NewFromInt(12)
	p, err = c.UpdateProduct(ctx, p.ID, catalog.UpdateInput{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)

	got, err := c.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "12.00", got.Price.StringFixed(2))

	ps, err := c.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, ps, 1)

	require.NoError(t, c.DeleteProduct(ctx, p.ID))
	_, err = c.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateProductValidationError(t *testing.T) {
	c := newServer(t)

	_, err := c.CreateProduct(context.Background(), catalog.CreateInput{Name: "Deck A", Price: "10", Category: "accessories"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Len(t, apiErr.Fields, 1)
	assert.Equal(t, "images", apiErr.Fields[0].Field)
}

func TestCartCheckoutThroughAPI(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	cr, err := cart.Load(cart.NewMemoryStorage())
	require.NoError(t, err)
	require.NoError(t, cr.AddQuantity("p1", "Deck A", decimal.NewFromInt(10), 2))

	proof := media.FromBytes("gcash.png", pngBytes)
	o, err := cr.Checkout(ctx, c, cart.Details{Fullname: "Juan", GCash: "0917", Address: "QC", Proof: &proof})
	require.NoError(t, err)
	assert.Equal(t, "20.00", o.Total.StringFixed(2))
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Empty(t, cr.Items())

	os, err := c.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, os, 1)

	require.NoError(t, c.DeleteOrder(ctx, o.ID))
	assert.ErrorIs(t, c.DeleteOrder(ctx, o.ID), apperr.ErrNotFound)
}

func TestCheckoutServerDownKeepsCart(t *testing.T) {
	c := New("http://127.0.0.1:1", time.Second)
	cr, _ := cart.Load(cart.NewMemoryStorage())
	require.NoError(t, cr.Add("p1", "Deck A", decimal.NewFromInt(10)))

	proof := media.FromBytes("gcash.png", pngBytes)
	_, err := cr.Checkout(context.Background(), c, cart.Details{Fullname: "Juan", GCash: "0917", Address: "QC", Proof: &proof})
	require.Error(t, err)
	assert.Len(t, cr.Items(), 1)
}

func TestAPIErrorMessage(t *testing.T) {
	e := &APIError{Status: 400, Message: "validation failed", Fields: []apperr.FieldError{{Field: "name", Message: "is required"}}}
	assert.Equal(t, "api 400: validation failed; name is required", e.Error())
	assert.NotErrorIs(t, e, apperr.ErrNotFound)
}
