package db_models

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusFailed         OrderStatus = "failed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// OrderItem is a line item snapshot taken at materialization time.
type OrderItem struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
	Quantity       int64  `json:"quantity"`
	LineTotalMinor int64  `json:"line_total_minor"`
}

// Order is the business-facing record produced from a completed ledger
// entry. Created exactly once per payment reference, mutated only through
// status transitions, never deleted.
type Order struct {
	BaseModel
	OrderNumber string `gorm:"uniqueIndex;size:32;not null"`

	// PaymentReference points back at the PaymentLedgerEntry that produced
	// this order and doubles as the idempotency key for materialization.
	PaymentReference uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	CustomerID *uuid.UUID `gorm:"type:uuid;index"` // nil for guest orders

	Items datatypes.JSON `gorm:"type:jsonb;default:'[]'"`

	Currency      string `gorm:"size:3;not null"`
	SubtotalMinor int64  `gorm:"not null"`
	TaxMinor      int64  `gorm:"not null"`
	ShippingMinor int64  `gorm:"not null"`
	DiscountMinor int64  `gorm:"not null"`
	TotalMinor    int64  `gorm:"not null"`

	Status OrderStatus `gorm:"size:20;index;not null"`

	Customer *Customer `gorm:"foreignKey:CustomerID"`
}

func (o *Order) LineItems() ([]OrderItem, error) {
	var items []OrderItem
	if err := json.Unmarshal(o.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (o *Order) SetLineItems(items []OrderItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	o.Items = raw
	return nil
}
