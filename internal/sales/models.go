package sales

import "time"

// Sale is the authoritative record of one checkout event. Immutable after
// commit except for Status, which only the status workflow may change.
type Sale struct {
	ID             string
	CustomerID     string
	SalesRepID     string
	SaleDate       time.Time
	Subtotal       float64
	DiscountAmount float64
	TaxAmount      float64
	TotalAmount    float64
	Status         Status
	PaymentMethod  string
	Notes          string
}

// LineItem is one product/quantity/price entry within a sale.
type LineItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// SaleSummary is one row of the sales listing, customer name joined in.
type SaleSummary struct {
	ID           string    `json:"id"`
	CustomerID   string    `json:"customerId"`
	SalesRepID   string    `json:"salesRepId"`
	Date         time.Time `json:"date"`
	TotalAmount  float64   `json:"totalAmount"`
	Status       Status    `json:"status"`
	CustomerName string    `json:"customerName"`
}

// SaleDetail is the full view of a single sale with display data for the
// customer and sales rep and the product-enriched line items.
type SaleDetail struct {
	SaleSummary
	CustomerEmail string       `json:"customerEmail"`
	SalesRepName  string       `json:"salesRepName"`
	Items         []DetailItem `json:"items"`
}

type DetailItem struct {
	ProductID          string  `json:"productId"`
	Quantity           int     `json:"quantity"`
	Price              float64 `json:"price"`
	ProductName        string  `json:"productName"`
	ProductDescription string  `json:"productDescription"`
}

type Product struct {
	ID          string  `json:"productId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}
