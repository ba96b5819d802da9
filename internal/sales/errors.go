package sales

import (
	"errors"
	"fmt"
)

var (
	ErrSaleNotFound      = errors.New("sale not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports malformed or missing input. It is raised before
// any storage is touched.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// InsufficientStockError reports a failed stock reservation for one product.
// It aborts the enclosing sale transaction.
type InsufficientStockError struct {
	ProductID string
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested %d)", e.ProductID, e.Requested)
}

// ProjectionError reports a failed post-commit customer-profile update. The
// sale stays committed; the projection is queued for asynchronous retry.
type ProjectionError struct {
	CustomerID string
	SaleID     string
	Err        error
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("profile projection for customer %s (sale %s): %v", e.CustomerID, e.SaleID, e.Err)
}

func (e *ProjectionError) Unwrap() error { return e.Err }
