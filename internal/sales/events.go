package sales

import (
	"encoding/json"
	"time"
)

const (
	EventSaleCreated         = "SaleCreated"
	EventProjectionRequested = "ProfileProjectionRequested"
)

const (
	TopicSaleCreated     = "sale.created"
	TopicProjectionRetry = "sale.projection.retry"
)

// Partition key = sale_id, so all events of one sale keep their order.
func PartitionKey(saleID string) []byte { return []byte(saleID) }

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "salepoint-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // usually sale_id
	Payload       json.RawMessage `json:"payload"`
}

type SaleCreatedPayload struct {
	SaleID      string     `json:"sale_id"`
	CustomerID  string     `json:"customer_id"`
	SalesRepID  string     `json:"sales_rep_id"`
	Items       []LineItem `json:"items"`
	TotalAmount float64    `json:"total_amount"`
}

// ProjectionRequestedPayload queues a customer-profile write that failed
// inline after commit; the reconciler replays it.
type ProjectionRequestedPayload struct {
	CustomerID  string    `json:"customer_id"`
	SaleID      string    `json:"sale_id"`
	TotalAmount float64   `json:"total_amount"`
	SaleDate    time.Time `json:"sale_date"`
	Attempt     int       `json:"attempt"`
}
