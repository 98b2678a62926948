// Package pricing converts raw line-item requests plus authoritative catalog
// data into priced, tax-aware line items and order totals. It is pure: no
// repository access, no clock, no side effects.
package pricing

import (
	"fmt"

	"ventamart/internal/common"
	"ventamart/internal/models"
)

// RequestedItem is a raw line item as submitted by a client: a product code,
// a quantity and an optional tax-percentage override. When TaxPercentage is
// nil the product's stored percentage applies; a caller value wins otherwise.
type RequestedItem struct {
	ProductCode   string   `json:"product_code"`
	Quantity      int      `json:"quantity"`
	TaxPercentage *float64 `json:"tax_percentage,omitempty"`
}

// Quote is the result of pricing one order: the priced line items in request
// order plus the recomputed totals. Line subtotals are tax-exclusive; tax is
// tracked per line and added once at the order total.
type Quote struct {
	Items    []*models.OrderLineItem
	Subtotal float64
	TaxTotal float64
	Total    float64
}

// Engine prices requested items against catalog products. The configured tax
// tiers bound caller-supplied overrides; the zero-length tier list disables
// that check.
type Engine struct {
	tiers []float64
}

func NewEngine(tiers []float64) *Engine {
	return &Engine{tiers: tiers}
}

// Price resolves every requested item against the catalog map (keyed by
// product code) and computes per-line subtotal and tax plus order totals.
//
//	lineSubtotal = quantity * unitPrice
//	lineTax      = lineSubtotal * taxPercentage / 100
//	orderTotal   = sum(lineSubtotal) + sum(lineTax)
func (e *Engine) Price(items []RequestedItem, catalog map[string]*models.Product) (*Quote, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order requires at least one line item", common.ErrValidation)
	}

	quote := &Quote{Items: make([]*models.OrderLineItem, 0, len(items))}
	for i, item := range items {
		if item.ProductCode == "" {
			return nil, fmt.Errorf("%w: line %d has no product code", common.ErrValidation, i+1)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line %d quantity must be positive", common.ErrValidation, i+1)
		}

		product, ok := catalog[item.ProductCode]
		if !ok {
			return nil, fmt.Errorf("%w: code %s", common.ErrProductNotFound, item.ProductCode)
		}

		taxPct := product.TaxPercentage
		if item.TaxPercentage != nil {
			taxPct = *item.TaxPercentage
			if !e.validTier(taxPct) {
				return nil, fmt.Errorf("%w: line %d tax percentage %.2f is not a configured tier", common.ErrValidation, i+1, taxPct)
			}
		}

		subtotal := float64(item.Quantity) * product.UnitPrice
		taxAmount := subtotal * taxPct / 100

		quote.Items = append(quote.Items, &models.OrderLineItem{
			LineNo:        i + 1,
			ProductCode:   product.Code,
			Barcode:       product.Barcode,
			Description:   product.Description,
			Quantity:      item.Quantity,
			UnitPrice:     product.UnitPrice,
			TaxPercentage: taxPct,
			Subtotal:      subtotal,
			TaxAmount:     taxAmount,
		})
		quote.Subtotal += subtotal
		quote.TaxTotal += taxAmount
	}

	quote.Total = quote.Subtotal + quote.TaxTotal
	return quote, nil
}

func (e *Engine) validTier(pct float64) bool {
	if len(e.tiers) == 0 {
		return pct >= 0 && pct <= 100
	}
	for _, tier := range e.tiers {
		if pct == tier {
			return true
		}
	}
	return false
}

// Codes returns the distinct product codes of the requested items, in first
// appearance order, for batch catalog lookup.
func Codes(items []RequestedItem) []string {
	seen := make(map[string]bool, len(items))
	codes := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item.ProductCode] {
			seen[item.ProductCode] = true
			codes = append(codes, item.ProductCode)
		}
	}
	return codes
}
