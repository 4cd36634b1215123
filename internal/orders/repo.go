package orders

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/jackc/pgx/v5"
)

type Store interface {
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id string) (Order, error)
	Create(ctx context.Context, o Order) error
	Delete(ctx context.Context, id string) error
}

// Repo stores orders in Postgres; the item snapshot is a jsonb document.
type Repo struct{ DB postgres.DB }

const orderColumns = `id, fullname, gcash, address, items, total, payment_proof, created_at`

func (r *Repo) List(ctx context.Context) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperr.Storage("list orders", err)
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, apperr.Storage("scan order", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("list orders", err)
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, apperr.NotFound("order", id)
	}
	if err != nil {
		return Order{}, apperr.Storage("get order", err)
	}
	return o, nil
}

func (r *Repo) Create(ctx context.Context, o Order) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO orders(id, fullname, gcash, address, items, total, payment_proof, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.Fullname, o.GCash, o.Address, o.Items, o.Total, o.PaymentProof, o.CreatedAt,
	)
	return apperr.Storage("insert order", err)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return apperr.Storage("delete order", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("order", id)
	}
	return nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Fullname, &o.GCash, &o.Address, &o.Items, &o.Total, &o.PaymentProof, &o.CreatedAt)
	return o, err
}
