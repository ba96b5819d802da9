package sales

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/salepoint/pos-backend/internal/postgres"
)

// ProductRepo serves plain product reads. Transaction-free; stock mutation
// goes through the Ledger only.
type ProductRepo struct{ DB postgres.Querier }

func (r *ProductRepo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT product_id, name, description, price, stock
		FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT product_id, name, description, price, stock
		FROM products WHERE product_id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
