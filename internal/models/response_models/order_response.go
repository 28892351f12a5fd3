package response_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"jollymart/internal/models/db_models"
)

type OrderItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	OrderNumber      string              `json:"order_number"`
	PaymentReference uuid.UUID           `json:"payment_reference"`
	CustomerID       *uuid.UUID          `json:"customer_id,omitempty"`
	Items            []OrderItemResponse `json:"items"`
	Currency         string              `json:"currency"`
	Subtotal         string              `json:"subtotal"`
	TaxAmount        string              `json:"tax_amount"`
	ShippingAmount   string              `json:"shipping_amount"`
	DiscountAmount   string              `json:"discount_amount"`
	Total            string              `json:"total"`
	Status           string              `json:"status"`
	CreatedAt        int64               `json:"created_at"`
}

// minorToDisplay renders minor units as a 2-decimal string ("9200" -> "92.00").
func minorToDisplay(minor int64) string {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func OrderResponseFromModel(order *db_models.Order) (*OrderResponse, error) {
	lines, err := order.LineItems()
	if err != nil {
		return nil, err
	}

	items := make([]OrderItemResponse, 0, len(lines))
	for _, line := range lines {
		items = append(items, OrderItemResponse{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: minorToDisplay(line.UnitPriceMinor),
			Quantity:  line.Quantity,
			LineTotal: minorToDisplay(line.LineTotalMinor),
		})
	}

	return &OrderResponse{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		PaymentReference: order.PaymentReference,
		CustomerID:       order.CustomerID,
		Items:            items,
		Currency:         order.Currency,
		Subtotal:         minorToDisplay(order.SubtotalMinor),
		TaxAmount:        minorToDisplay(order.TaxMinor),
		ShippingAmount:   minorToDisplay(order.ShippingMinor),
		DiscountAmount:   minorToDisplay(order.DiscountMinor),
		Total:            minorToDisplay(order.TotalMinor),
		Status:           string(order.Status),
		CreatedAt:        order.CreatedAt,
	}, nil
}
