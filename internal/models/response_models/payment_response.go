package response_models

import "github.com/google/uuid"

type CreatePaymentResponse struct {
	PaymentID             uuid.UUID `json:"payment_id"`
	ExternalTransactionID string    `json:"external_transaction_id"`
	QRCodeTargetURL       string    `json:"qr_code_target_url"`
	AmountMinor           int64     `json:"amount_minor"`
	Currency              string    `json:"currency"`
	ExpiresAt             int64     `json:"expires_at"`
}

type PaymentStatusResponse struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	Status      string    `json:"status"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
	LastUpdated int64     `json:"last_updated"`
}
