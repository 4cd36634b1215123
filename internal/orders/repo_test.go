package orders

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderCols = []string{"id", "fullname", "gcash", "address", "items", "total", "payment_proof", "created_at"}

func newMockRepo(t *testing.T) (*Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &Repo{DB: mock}, mock
}

func TestRepoCreate(t *testing.T) {
	r, mock := newMockRepo(t)
	o := Order{
		ID: "o1", Fullname: "Juan", GCash: "0917", Address: "QC",
		Items:        []Item{{ProductID: "p1", Name: "Deck", Price: decimal.NewFromInt(10), Quantity: 2}},
		Total:        decimal.NewFromInt(20),
		PaymentProof: "http://h/uploads/proof.png",
		CreatedAt:    time.Now().UTC(),
	}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO orders`)).
		WithArgs(o.ID, o.Fullname, o.GCash, o.Address, o.Items, o.Total, o.PaymentProof, o.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, r.Create(context.Background(), o))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoList(t *testing.T) {
	r, mock := newMockRepo(t)
	newer := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	items := []Item{{ProductID: "p1", Name: "Deck", Price: decimal.NewFromInt(10), Quantity: 1}}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM orders ORDER BY created_at DESC`)).
		WillReturnRows(pgxmock.NewRows(orderCols).
			AddRow("o2", "B", "0918", "Cebu", items, decimal.NewFromInt(10), "http://h/uploads/b.png", newer).
			AddRow("o1", "A", "0917", "QC", items, decimal.NewFromInt(10), "http://h/uploads/a.png", older))

	os, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, os, 2)
	assert.Equal(t, "o2", os[0].ID)
	assert.Equal(t, "p1", os[1].Items[0].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoGetNotFound(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE id=$1`)).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := r.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepoDelete(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM orders WHERE id=$1`)).
		WithArgs("o1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM orders WHERE id=$1`)).
		WithArgs("o1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM orders WHERE id=$1`)).
		WithArgs("o2").
		WillReturnError(errors.New("conn reset"))

	ctx := context.Background()
	require.NoError(t, r.Delete(ctx, "o1"))
	assert.ErrorIs(t, r.Delete(ctx, "o1"), apperr.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, "o2"), apperr.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}
