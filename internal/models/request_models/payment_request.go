package request_models

type PaymentItem struct {
	ProductID      string `json:"product_id" binding:"required"`
	Name           string `json:"name" binding:"required"`
	UnitPriceMinor int64  `json:"unit_price_minor" binding:"required,gt=0"`
	Quantity       int64  `json:"quantity" binding:"required,gt=0"`
}

type CustomerInfo struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type CreatePaymentRequest struct {
	// AmountMinor is the final charged total in minor currency units,
	// tax already included as computed at checkout.
	AmountMinor   int64         `json:"amount_minor" binding:"required,gt=0"`
	Currency      string        `json:"currency" binding:"required,len=3"`
	Customer      CustomerInfo  `json:"customer_info" binding:"required"`
	Items         []PaymentItem `json:"items" binding:"required,min=1,dive"`
	ShippingMinor int64         `json:"shipping_minor" binding:"gte=0"`
	DiscountMinor int64         `json:"discount_minor" binding:"gte=0"`
}

// ReconcileRequest is the operator-facing manual trigger payload. It feeds
// the same reconcile path the webhook and the status poll use.
type ReconcileRequest struct {
	PaymentID             string `json:"payment_id" binding:"required,uuid4"`
	ExternalTransactionID string `json:"external_transaction_id" binding:"required"`
	ReportedStatus        string `json:"reported_status" binding:"required,oneof=succeeded failed canceled"`
}
