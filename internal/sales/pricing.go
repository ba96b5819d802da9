package sales

import "fmt"

// DefaultTaxRate applies when the request carries no explicit tax amount.
const DefaultTaxRate = 0.07

type Totals struct {
	Subtotal float64
	Discount float64
	Tax      float64
	Total    float64
}

// PriceItems computes sale totals from line items. discount and tax are
// optional; nil means not supplied, an explicit zero is honored. Pure: no
// I/O, no side effects.
func PriceItems(items []LineItem, discount, tax *float64) (Totals, error) {
	var t Totals
	for _, it := range items {
		if it.Quantity <= 0 {
			return Totals{}, &ValidationError{Msg: fmt.Sprintf("quantity must be positive for product %s", it.ProductID)}
		}
		if it.Price < 0 {
			return Totals{}, &ValidationError{Msg: fmt.Sprintf("price must not be negative for product %s", it.ProductID)}
		}
		t.Subtotal += it.Price * float64(it.Quantity)
	}
	if discount != nil {
		if *discount < 0 {
			return Totals{}, &ValidationError{Msg: "discount amount must not be negative"}
		}
		t.Discount = *discount
	}
	if tax != nil {
		if *tax < 0 {
			return Totals{}, &ValidationError{Msg: "tax amount must not be negative"}
		}
		t.Tax = *tax
	} else {
		t.Tax = t.Subtotal * DefaultTaxRate
	}
	t.Total = t.Subtotal - t.Discount + t.Tax
	return t, nil
}
