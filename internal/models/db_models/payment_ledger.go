package db_models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

type LedgerStatus string

const (
	LedgerStatusPending   LedgerStatus = "pending"
	LedgerStatusCompleted LedgerStatus = "completed"
	LedgerStatusFailed    LedgerStatus = "failed"
	LedgerStatusCancelled LedgerStatus = "cancelled"
	LedgerStatusExpired   LedgerStatus = "expired"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s LedgerStatus) IsTerminal() bool {
	return s != LedgerStatusPending
}

// SnapshotItem is one cart line frozen into the ledger entry at creation.
type SnapshotItem struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
	Quantity       int64  `json:"quantity"`
}

// CustomerSnapshot is the immutable copy of customer + cart taken when the
// QR code is issued. Order materialization reads from here, never from the
// live customer record.
type CustomerSnapshot struct {
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone,omitempty"`
	Address       string         `json:"address,omitempty"`
	Items         []SnapshotItem `json:"items"`
	ShippingMinor int64          `json:"shipping_minor,omitempty"`
	DiscountMinor int64          `json:"discount_minor,omitempty"`
}

// PaymentLedgerEntry records one attempted payment-via-QR-code, whether or
// not it ever succeeds. Its ID is the external-facing identifier embedded in
// the QR target URL.
type PaymentLedgerEntry struct {
	BaseModel
	AmountMinor int64        `gorm:"not null"`
	Currency    string       `gorm:"size:3;not null"`
	Status      LedgerStatus `gorm:"size:16;index;not null"`

	// Gateway linkage; set once the payment intent exists, immutable after
	// the entry turns completed.
	ExternalTransactionID *string `gorm:"index"`

	ExpiresAt   int64 `gorm:"not null"`
	CompletedAt *int64

	CustomerSnapshot datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
}

func (e *PaymentLedgerEntry) Snapshot() (*CustomerSnapshot, error) {
	var snap CustomerSnapshot
	if err := json.Unmarshal(e.CustomerSnapshot, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (e *PaymentLedgerEntry) SetSnapshot(snap *CustomerSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	e.CustomerSnapshot = raw
	return nil
}
