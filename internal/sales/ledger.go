package sales

import (
	"context"

	"github.com/salepoint/pos-backend/internal/postgres"
)

// Ledger decrements per-product stock counters. The decrement is a single
// conditional statement evaluated atomically by the store: concurrent
// reservations of the same product serialize on the row lock, and stock
// never goes negative.
type Ledger struct{}

// Reserve decrements stock for productID by qty inside tx. When current
// stock is below qty the update matches no row and InsufficientStockError
// is returned; the caller rolls back the whole sale.
func (Ledger) Reserve(ctx context.Context, tx postgres.Querier, productID string, qty int) error {
	ct, err := tx.Exec(ctx, `
		UPDATE products SET stock = stock - $2
		WHERE product_id = $1 AND stock >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return &InsufficientStockError{ProductID: productID, Requested: qty}
	}
	return nil
}
