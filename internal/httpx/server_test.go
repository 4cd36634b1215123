package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/logx"
	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type testApp struct {
	router   *chi.Mux
	fs       afero.Fs
	products *catalog.MemoryStore
	orders   *orders.MemoryStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := logx.Discard()
	fs := afero.NewMemMapFs()
	ms := media.NewFileStoreFs(fs)
	ps := catalog.NewMemoryStore()
	os := orders.NewMemoryStore()

	r := NewRouter(log, fs)
	(&ProductsHandler{Service: catalog.NewService(ps, ms, events.Nop{}, log), Log: log}).Register(r)
	(&OrdersHandler{Service: orders.NewService(os, ms, events.Nop{}, log), Log: log}).Register(r)
	return &testApp{router: r, fs: fs, products: ps, orders: os}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

type part struct {
	field, filename string
	data            []byte
}

func multipartReq(t *testing.T, method, target string, fields map[string]string, files ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		w, err := mw.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = w.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, body io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(body).Decode(&v))
	return v
}

func TestHealthAndBanner(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = app.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Banner, rec.Body.String())
}

func TestProductLifecycle(t *testing.T) {
	app := newTestApp(t)

	req := multipartReq(t, http.MethodPost, "/api/products", map[string]string{
		"name": "Deck A", "price": "10", "category": "playing-cards", "stock": "5",
	}, part{"images", "deck.png", pngBytes})
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := app.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[productCreatedResp](t, rec.Body)
	p := created.Product
	require.Len(t, p.Images, 1)
	assert.True(t, strings.HasPrefix(p.Images[0], "https://example.com/uploads/"))
	assert.Equal(t, 5, p.Stock)

	// gambar bisa diambil lewat /uploads/
	name, ok := media.NameFromURL(p.Images[0])
	require.True(t, ok)
	rec = app.do(httptest.NewRequest(http.MethodGet, "/uploads/"+name, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngBytes, rec.Body.Bytes())

	rec = app.do(httptest.NewRequest(http.MethodGet, "/api/products/"+p.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[catalog.Product](t, rec.Body)
	assert.Equal(t, 5, got.Stock)

	// update price only, stock must survive
	req = httptest.NewRequest(http.MethodPut, "/api/products/"+p.ID, strings.NewReader(`{"price": 12}`))
	req.Header.Set("Content-Type", "application/json")
	rec = app.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got = decode[catalog.Product](t, rec.Body)
	assert.Equal(t, "12.00", got.Price.StringFixed(2))
	assert.Equal(t, 5, got.Stock)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]catalog.Product](t, rec.Body)
	require.Len(t, list, 1)

	rec = app.do(httptest.NewRequest(http.MethodDelete, "/api/products/"+p.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	exists, _ := afero.Exists(app.fs, "/"+name)
	assert.False(t, exists)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/api/products/"+p.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = app.do(httptest.NewRequest(http.MethodDelete, "/api/products/"+p.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProductValidation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(multipartReq(t, http.MethodPost, "/api/products", map[string]string{
		"name": "Deck A", "price": "10", "category": "playing-cards",
	}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorResp](t, rec.Body)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "images", body.Fields[0].Field)
	assert.Equal(t, 0, app.products.Len())

	rec = app.do(multipartReq(t, http.MethodPost, "/api/products", map[string]string{
		"name": "Deck A", "price": "ten", "category": "playing-cards",
	}, part{"images", "deck.png", pngBytes}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	infos, _ := afero.ReadDir(app.fs, "/")
	assert.Empty(t, infos)

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = app.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProductErrors(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPut, "/api/products/missing", strings.NewReader(`{"price": 12}`))
	assert.Equal(t, http.StatusNotFound, app.do(req).Code)

	req = httptest.NewRequest(http.MethodPut, "/api/products/missing", strings.NewReader(`{not json`))
	assert.Equal(t, http.StatusBadRequest, app.do(req).Code)
}

func TestOrderLifecycle(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(multipartReq(t, http.MethodPost, "/api/orders", map[string]string{
		"fullname": "Juan Dela Cruz",
		"gcash":    "09171234567",
		"address":  "Quezon City",
		"items":    `[{"id":"p1","name":"Deck A","price":10,"quantity":2}]`,
		"total":    "20.00",
	}, part{"paymentProof", "proof.png", pngBytes}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	placed := decode[orderPlacedResp](t, rec.Body).Order
	assert.Equal(t, "20.00", placed.Total.StringFixed(2))
	require.Len(t, placed.Items, 1)
	assert.True(t, strings.HasPrefix(placed.PaymentProof, "http://example.com/uploads/"))

	rec = app.do(httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]orders.Order](t, rec.Body)
	require.Len(t, list, 1)
	assert.Equal(t, placed.ID, list[0].ID)

	rec = app.do(httptest.NewRequest(http.MethodDelete, "/api/orders/"+placed.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, app.orders.Len())

	// proof tetap ada setelah order dihapus
	name, _ := media.NameFromURL(placed.PaymentProof)
	exists, _ := afero.Exists(app.fs, "/"+name)
	assert.True(t, exists)

	rec = app.do(httptest.NewRequest(http.MethodDelete, "/api/orders/"+placed.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrderMissingProof(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(multipartReq(t, http.MethodPost, "/api/orders", map[string]string{
		"fullname": "Juan", "gcash": "0917", "address": "QC",
		"items": `[{"id":"p1","name":"Deck A","price":10,"quantity":1}]`, "total": "10",
	}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorResp](t, rec.Body)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "paymentProof", body.Fields[0].Field)
	assert.Equal(t, 0, app.orders.Len())
}

func TestCreateOrderRejectsSecondProof(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(multipartReq(t, http.MethodPost, "/api/orders", map[string]string{
		"fullname": "Juan", "gcash": "0917", "address": "QC",
		"items": `[{"id":"p1","name":"Deck A","price":10,"quantity":1}]`, "total": "10",
	}, part{"paymentProof", "a.png", pngBytes}, part{"paymentProof", "b.png", pngBytes}))
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	body := decode[errorResp](t, rec.Body)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "paymentProof", body.Fields[0].Field)
	assert.Equal(t, 0, app.orders.Len())

	infos, _ := afero.ReadDir(app.fs, "/")
	assert.Empty(t, infos)
}

func TestUploadsNoListing(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(httptest.NewRequest(http.MethodGet, "/uploads/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBaseURL(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://shop.test:4000/api/products", nil)
	assert.Equal(t, "http://shop.test:4000", baseURL(r))

	r.Header.Set("X-Forwarded-Proto", "https, http")
	assert.Equal(t, "https://shop.test:4000", baseURL(r))

	r.Header.Set("X-Forwarded-Proto", " HTTPS ")
	assert.Equal(t, "https://shop.test:4000", baseURL(r))

	for _, bad := range []string{"evil", "javascript", "ftp, https", ""} {
		r.Header.Set("X-Forwarded-Proto", bad)
		assert.Equal(t, "http://shop.test:4000", baseURL(r), bad)
	}
}
