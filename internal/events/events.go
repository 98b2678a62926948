package events

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated = "OrderCreated"
	EventOrderUpdated = "OrderUpdated"
	EventOrderDeleted = "OrderDeleted"
)

const (
	TopicOrderCreated = "order.created"
	TopicOrderUpdated = "order.updated"
	TopicOrderDeleted = "order.deleted"
)

// Envelope wraps every published event so consumers can route on type
// without decoding the payload.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

type ItemQty struct {
	ProductCode string `json:"product_code"`
	Quantity    int    `json:"quantity"`
}

type OrderEventPayload struct {
	OrderID    string    `json:"order_id"`
	Number     string    `json:"number"`
	CustomerID string    `json:"customer_id"`
	Items      []ItemQty `json:"items,omitempty"`
	Subtotal   float64   `json:"subtotal"`
	TaxTotal   float64   `json:"tax_total"`
	Total      float64   `json:"total"`
}

// PartitionKey keeps all events of one order on one partition so consumers
// see them in order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
