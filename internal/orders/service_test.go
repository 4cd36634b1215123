package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/logx"
	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func newService() (*Service, *MemoryStore, afero.Fs, *events.Recorder) {
	fs := afero.NewMemMapFs()
	store := NewMemoryStore()
	rec := &events.Recorder{}
	return NewService(store, media.NewFileStoreFs(fs), rec, logx.Discard()), store, fs, rec
}

func checkout() CreateInput {
	proof := media.FromBytes("gcash.png", pngBytes)
	return CreateInput{
		Fullname: "Juan Dela Cruz",
		GCash:    "09171234567",
		Address:  "Quezon City",
		Items:    `[{"id":"p1","name":"Deck","price":10,"quantity":2}]`,
		Total:    "20.00",
		Proof:    &proof,
		BaseURL:  "http://shop.test",
	}
}

func TestCreateOrder(t *testing.T) {
	svc, store, fs, rec := newService()
	ctx := context.Background()

	o, err := svc.Create(ctx, checkout())
	require.NoError(t, err)

	assert.Equal(t, 1, store.Len())
	require.Len(t, o.Items, 1)
	assert.Equal(t, "p1", o.Items[0].ProductID)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "20.00", o.Total.StringFixed(2))
	assert.Regexp(t, `^http://shop\.test/uploads/\d+-[0-9a-f]{8}-gcash\.png$`, o.PaymentProof)

	name, ok := media.NameFromURL(o.PaymentProof)
	require.True(t, ok)
	exists, _ := afero.Exists(fs, "/"+name)
	assert.True(t, exists)
	assert.Equal(t, []string{events.EventOrderPlaced}, rec.Types())
}

func TestCreateOrderTotalMismatchIsAccepted(t *testing.T) {
	svc, store, _, _ := newService()
	in := checkout()
	in.Total = "15"

	o, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15).Equal(o.Total))
	assert.Equal(t, 1, store.Len())
}

func TestCreateOrderValidation(t *testing.T) {
	cases := map[string]struct {
		mutate func(*CreateInput)
		field  string
	}{
		"missing fullname":  {func(in *CreateInput) { in.Fullname = "" }, "fullname"},
		"missing gcash":     {func(in *CreateInput) { in.GCash = " " }, "gcash"},
		"missing address":   {func(in *CreateInput) { in.Address = "" }, "address"},
		"missing items":     {func(in *CreateInput) { in.Items = "" }, "items"},
		"empty items":       {func(in *CreateInput) { in.Items = "[]" }, "items"},
		"items not json":    {func(in *CreateInput) { in.Items = "2x Deck" }, "items"},
		"zero quantity":     {func(in *CreateInput) { in.Items = `[{"id":"p1","name":"Deck","price":10,"quantity":0}]` }, "items[0].quantity"},
		"sub-centavo price": {func(in *CreateInput) { in.Items = `[{"id":"p1","name":"Deck","price":10.005,"quantity":2}]` }, "items[0].price"},
		"huge quantity":     {func(in *CreateInput) { in.Items = `[{"id":"p1","name":"Deck","price":10,"quantity":3000000000}]` }, "items[0].quantity"},
		"sub-centavo total": {func(in *CreateInput) { in.Total = "10.005" }, "total"},
		"total too large":   {func(in *CreateInput) { in.Total = "12345678901" }, "total"},
		"missing total":     {func(in *CreateInput) { in.Total = "" }, "total"},
		"total not number":  {func(in *CreateInput) { in.Total = "twenty" }, "total"},
		"missing proof":     {func(in *CreateInput) { in.Proof = nil }, "paymentProof"},
		"proof not image": {func(in *CreateInput) {
			up := media.FromBytes("proof.txt", []byte("paid na po"))
			in.Proof = &up
		}, "paymentProof"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc, store, fs, rec := newService()
			in := checkout()
			tc.mutate(&in)

			_, err := svc.Create(context.Background(), in)
			require.ErrorIs(t, err, apperr.ErrValidation)
			var ve *apperr.ValidationError
			require.True(t, errors.As(err, &ve))
			require.NotEmpty(t, ve.Fields)
			assert.Equal(t, tc.field, ve.Fields[0].Field)

			assert.Equal(t, 0, store.Len())
			infos, _ := afero.ReadDir(fs, "/")
			assert.Empty(t, infos)
			assert.Empty(t, rec.Types())
		})
	}
}

type failingStore struct {
	*MemoryStore
	err error
}

func (f failingStore) Create(context.Context, Order) error { return f.err }

func TestCreateOrderStorageFailure(t *testing.T) {
	rec := &events.Recorder{}
	boom := apperr.Storage("insert order", errors.New("db down"))
	svc := NewService(failingStore{MemoryStore: NewMemoryStore(), err: boom},
		media.NewFileStoreFs(afero.NewMemMapFs()), rec, logx.Discard())

	_, err := svc.Create(context.Background(), checkout())
	require.ErrorIs(t, err, apperr.ErrStorage)
	assert.Equal(t, []string{events.EventMediaOrphaned}, rec.Types())
}

func TestListNewestFirst(t *testing.T) {
	svc, _, _, _ := newService()
	ctx := context.Background()
	first, err := svc.Create(ctx, checkout())
	require.NoError(t, err)
	second, err := svc.Create(ctx, checkout())
	require.NoError(t, err)

	os, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, os, 2)
	assert.Equal(t, second.ID, os[0].ID)
	assert.Equal(t, first.ID, os[1].ID)
}

func TestDeleteOrderKeepsProof(t *testing.T) {
	svc, store, fs, rec := newService()
	ctx := context.Background()
	o, err := svc.Create(ctx, checkout())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, o.ID))
	assert.Equal(t, 0, store.Len())

	name, _ := media.NameFromURL(o.PaymentProof)
	exists, _ := afero.Exists(fs, "/"+name)
	assert.True(t, exists)

	evs := rec.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, events.EventOrderDeleted, evs[1].EventType)
	assert.Equal(t, o.PaymentProof, evs[1].Payload.(events.OrderDeletedPayload).PaymentProof)

	// double-click delete: yang kedua dapat not found
	assert.ErrorIs(t, svc.Delete(ctx, o.ID), apperr.ErrNotFound)
}

func TestSumItems(t *testing.T) {
	items := []Item{
		{ProductID: "p1", Price: decimal.RequireFromString("10.25"), Quantity: 2},
		{ProductID: "p2", Price: decimal.RequireFromString("0.50"), Quantity: 3},
	}
	assert.Equal(t, "22.00", SumItems(items).StringFixed(2))
	assert.True(t, SumItems(nil).IsZero())
}
