package catalog

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/jackc/pgx/v5"
)

type Store interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, id string) error
}

// Repo is the Postgres-backed Store; images live in a text[] column.
type Repo struct{ DB postgres.DB }

const productColumns = `id, name, price, category, description, images, stock, created_at, updated_at`

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperr.Storage("list products", err)
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperr.Storage("scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("list products", err)
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, apperr.NotFound("product", id)
	}
	if err != nil {
		return Product{}, apperr.Storage("get product", err)
	}
	return p, nil
}

func (r *Repo) Create(ctx context.Context, p Product) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, name, price, category, description, images, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Name, p.Price, string(p.Category), p.Description, p.Images, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
	return apperr.Storage("insert product", err)
}

func (r *Repo) Update(ctx context.Context, p Product) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET name=$2, price=$3, category=$4, description=$5, images=$6, stock=$7, updated_at=$8
		WHERE id=$1`,
		p.ID, p.Name, p.Price, string(p.Category), p.Description, p.Images, p.Stock, p.UpdatedAt,
	)
	if err != nil {
		return apperr.Storage("update product", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("product", p.ID)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return apperr.Storage("delete product", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("product", id)
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p   Product
		cat string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Price, &cat, &p.Description, &p.Images, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	p.Category = Category(cat)
	return p, err
}
