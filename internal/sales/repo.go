package sales

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/salepoint/pos-backend/internal/postgres"
)

// Repo persists sale headers and line items. Methods taking a tx argument
// must run inside the sale's transaction; the rest are transaction-free
// single statements.
type Repo struct{ DB postgres.Querier }

func (r *Repo) InsertSale(ctx context.Context, tx postgres.Querier, s *Sale) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO sales (sale_id, customer_id, sales_rep_id, sale_date,
		                   subtotal, discount_amount, tax_amount, total_amount,
		                   status, payment_method, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.CustomerID, s.SalesRepID, s.SaleDate,
		s.Subtotal, s.DiscountAmount, s.TaxAmount, s.TotalAmount,
		string(s.Status), s.PaymentMethod, s.Notes)
	return err
}

func (r *Repo) InsertLineItem(ctx context.Context, tx postgres.Querier, saleID string, it LineItem) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO sale_items (sale_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)`,
		saleID, it.ProductID, it.Quantity, it.Price)
	return err
}

// GetSaleByID joins the sale header with customer and sales-rep display data
// and loads the line items.
func (r *Repo) GetSaleByID(ctx context.Context, id string) (*SaleDetail, error) {
	var (
		d      SaleDetail
		status string
	)
	err := r.DB.QueryRow(ctx, `
		SELECT s.sale_id, s.customer_id, s.sales_rep_id, s.sale_date,
		       s.total_amount, s.status,
		       c.name, c.email, u.name
		FROM sales s
		JOIN customers c ON s.customer_id = c.customer_id
		JOIN users u ON s.sales_rep_id = u.user_id
		WHERE s.sale_id = $1`, id).
		Scan(&d.ID, &d.CustomerID, &d.SalesRepID, &d.Date,
			&d.TotalAmount, &status,
			&d.CustomerName, &d.CustomerEmail, &d.SalesRepName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	d.Status = Status(status)

	rows, err := r.DB.Query(ctx, `
		SELECT si.product_id, si.quantity, si.price, p.name, p.description
		FROM sale_items si
		JOIN products p ON si.product_id = p.product_id
		WHERE si.sale_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it DetailItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.Price, &it.ProductName, &it.ProductDescription); err != nil {
			return nil, err
		}
		d.Items = append(d.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListSales returns all sales, most recent first.
func (r *Repo) ListSales(ctx context.Context) ([]SaleSummary, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT s.sale_id, s.customer_id, s.sales_rep_id, s.sale_date,
		       s.total_amount, s.status, c.name
		FROM sales s
		JOIN customers c ON s.customer_id = c.customer_id
		ORDER BY s.sale_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SaleSummary
	for rows.Next() {
		var (
			sum    SaleSummary
			status string
		)
		if err := rows.Scan(&sum.ID, &sum.CustomerID, &sum.SalesRepID, &sum.Date,
			&sum.TotalAmount, &status, &sum.CustomerName); err != nil {
			return nil, err
		}
		sum.Status = Status(status)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// UpdateStatusFrom applies a conditional status update and reports how many
// rows matched, so the caller can tell a missing sale from a terminal one.
func (r *Repo) UpdateStatusFrom(ctx context.Context, id string, from, to Status) (int64, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE sales SET status = $3
		WHERE sale_id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *Repo) GetStatus(ctx context.Context, id string) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM sales WHERE sale_id = $1`, id).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrSaleNotFound
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}
