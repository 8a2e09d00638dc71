package models

import (
	"github.com/shopspring/decimal"
)

// ChangeType marks how a line changed on a kitchen change receipt
type ChangeType string

const (
	ChangeNew       ChangeType = "new"
	ChangeCancelled ChangeType = "cancelled"
	ChangeNoteOnly  ChangeType = "note_only"
)

// Customer is the partner attached to an order
type Customer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ComboItem is one component of a combo product
type ComboItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
}

// OrderLine is one canonical product line of a task payload
type OrderLine struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name" validate:"required"`
	Quantity    decimal.Decimal `json:"qty"`
	Note        string          `json:"note"`
	Price       decimal.Decimal `json:"price"`
	Sides       []string        `json:"sides"`
	ComboItems  []ComboItem     `json:"combo_items"`
	Attributes  []string        `json:"attributes"`
	ChangeType  ChangeType      `json:"change_type,omitempty" validate:"omitempty,oneof=new cancelled note_only"`
}

// OrderData is the canonical payload submitted to the task backend
type OrderData struct {
	ProjectID     int64       `json:"project_id" validate:"required,gt=0"`
	OrderLines    []OrderLine `json:"order_lines" validate:"required,min=1,dive"`
	Note          string      `json:"note"`
	Name          string      `json:"name"`
	IsChangeOrder bool        `json:"is_change_order"`
	IsNewOrder    bool        `json:"is_new_order"`
	IsAddedOrder  bool        `json:"is_added_order"`
	Table         *string     `json:"table"`
	Server        *string     `json:"server"`
	Customer      *Customer   `json:"customer,omitempty"`
	Reprint       bool        `json:"reprint"`
}

// NewOrderData returns a payload with the default order flags
func NewOrderData(projectID int64) *OrderData {
	return &OrderData{
		ProjectID:  projectID,
		OrderLines: []OrderLine{},
		IsNewOrder: true,
	}
}

// OrderType describes the order for the task footer
func (d *OrderData) OrderType() string {
	switch {
	case d.IsChangeOrder:
		return "change"
	case d.IsAddedOrder:
		return "added"
	default:
		return "new"
	}
}
