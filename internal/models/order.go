package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PosOrder is a saved point of sale order as stored by the task board
type PosOrder struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	TableName    *string         `json:"table_name,omitempty" db:"table_name"`
	ServerName   *string         `json:"server_name,omitempty" db:"server_name"`
	CustomerID   *int64          `json:"customer_id,omitempty" db:"customer_id"`
	CustomerName *string         `json:"customer_name,omitempty" db:"customer_name"`
	Note         string          `json:"note" db:"note"`
	ProjectID    *int64          `json:"project_id,omitempty" db:"project_id"`
	AmountTotal  decimal.Decimal `json:"amount_total" db:"amount_total"`
	Lines        []PosOrderLine  `json:"lines"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// PosOrderLine is one product line of a saved order
type PosOrderLine struct {
	ID          int64           `json:"id" db:"id"`
	OrderID     int64           `json:"order_id" db:"order_id"`
	ProductID   int64           `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    decimal.Decimal `json:"qty" db:"qty"`
	PriceUnit   decimal.Decimal `json:"price_unit" db:"price_unit"`
	Note        string          `json:"note" db:"note"`
}

// Subtotal is quantity times unit price
func (l PosOrderLine) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.PriceUnit)
}
