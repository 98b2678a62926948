package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem is one product/quantity pairing within an order. Unit price
// and tax percentage are copied from the catalog at pricing time so later
// catalog edits do not change committed orders.
type OrderLineItem struct {
	ID            uuid.UUID `json:"id" db:"id"`
	OrderID       uuid.UUID `json:"order_id" db:"order_id"`
	LineNo        int       `json:"line_no" db:"line_no"`
	ProductCode   string    `json:"product_code" db:"product_code"`
	Barcode       *string   `json:"barcode" db:"barcode"`
	Description   string    `json:"description" db:"description"`
	Quantity      int       `json:"quantity" db:"quantity"`
	UnitPrice     float64   `json:"unit_price" db:"unit_price"`
	TaxPercentage float64   `json:"tax_percentage" db:"tax_percentage"`
	Subtotal      float64   `json:"subtotal" db:"subtotal"`
	TaxAmount     float64   `json:"tax_amount" db:"tax_amount"`
}

// Order glues a customer to its priced line items. Subtotal, TaxTotal and
// Total are always recomputed from the items, never accepted from a client.
type Order struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	Number       string           `json:"number" db:"number"`
	CustomerID   uuid.UUID        `json:"customer_id" db:"customer_id"`
	CustomerName string           `json:"customer_name" db:"customer_name"`
	Items        []*OrderLineItem `json:"items"`
	Subtotal     float64          `json:"subtotal" db:"subtotal"`
	TaxTotal     float64          `json:"tax_total" db:"tax_total"`
	Total        float64          `json:"total" db:"total"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

// QuantitiesByCode aggregates the order's line quantities per product code.
// Duplicate codes within one order collapse into a single figure so the
// stock reconciler applies one delta per product.
func (o *Order) QuantitiesByCode() map[string]int {
	qty := make(map[string]int, len(o.Items))
	for _, item := range o.Items {
		qty[item.ProductCode] += item.Quantity
	}
	return qty
}
