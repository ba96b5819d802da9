package redisx

import "time"

const (
	// Customer profile projection: customer:profile:{customer_id} -> hash
	KeyCustomerProfile = "customer:profile:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

// Hash fields of the customer profile projection.
const (
	FieldLastPurchaseDate   = "last_purchase_date"
	FieldLastPurchaseAmount = "last_purchase_amount"
	FieldLastSaleID         = "last_sale_id"
)

var TTLDedup = 48 * time.Hour
