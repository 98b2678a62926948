package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductSearchFilter holds search and filter criteria for catalog queries
type ProductSearchFilter struct {
	Query     string   `json:"query,omitempty"`      // Full-text search across code, description, barcode
	Barcode   *string  `json:"barcode,omitempty"`    // Exact barcode match
	MinStock  *int     `json:"min_stock,omitempty"`  // Minimum stock quantity
	MaxStock  *int     `json:"max_stock,omitempty"`  // Maximum stock quantity
	MinPrice  *float64 `json:"min_price,omitempty"`  // Minimum unit price
	MaxPrice  *float64 `json:"max_price,omitempty"`  // Maximum unit price
	SortBy    string   `json:"sort_by,omitempty"`    // Sort field: code, created_at, stock, unit_price
	SortOrder string   `json:"sort_order,omitempty"` // Sort order: asc, desc
	Limit     int      `json:"limit,omitempty"`      // Page size (default: 50)
	Offset    int      `json:"offset,omitempty"`     // Page offset
}

type Product struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Code          string    `json:"code" db:"code"`
	Barcode       *string   `json:"barcode" db:"barcode"`
	Description   string    `json:"description" db:"description"`
	UnitPrice     float64   `json:"unit_price" db:"unit_price"`
	Stock         int       `json:"stock" db:"stock"`
	IVA           bool      `json:"iva" db:"iva"`
	TaxPercentage float64   `json:"tax_percentage" db:"tax_percentage"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
