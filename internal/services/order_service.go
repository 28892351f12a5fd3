package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"jollymart/internal/models/db_models"
	"jollymart/internal/repositories"
	"jollymart/pkg/utils"
)

// OrderService materializes completed ledger entries into orders. Creation
// is idempotent on the payment reference: invoked twice for the same entry
// it returns the already-persisted order.
type OrderService interface {
	Materialize(ctx context.Context, entry *db_models.PaymentLedgerEntry) (*db_models.Order, error)
	GetByPaymentReference(ctx context.Context, paymentID string) (*db_models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status db_models.OrderStatus) error
}

type orderService struct {
	orderRepo    repositories.OrderRepository
	customerRepo repositories.CustomerRepository
	mail         IMailService
}

func NewOrderService(
	orderRepo repositories.OrderRepository,
	customerRepo repositories.CustomerRepository,
	mail IMailService) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		mail:         mail,
	}
}

const orderNumberAttempts = 3

func (s *orderService) Materialize(ctx context.Context, entry *db_models.PaymentLedgerEntry) (*db_models.Order, error) {
	existing, err := s.orderRepo.FindByPaymentReference(ctx, entry.ID.String())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	snap, err := entry.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("ledger %s snapshot: %w", entry.ID, err)
	}

	items, subtotalMinor := buildLineItems(snap.Items)

	// The charged amount is authoritative: tax is whatever remains of it
	// after the snapshot-derived components, never recomputed from a rate.
	taxMinor := entry.AmountMinor - subtotalMinor - snap.ShippingMinor + snap.DiscountMinor
	if taxMinor < 0 {
		log.Printf("materialize anomaly: ledger %s charged %d below snapshot components (subtotal=%d shipping=%d discount=%d)",
			entry.ID, entry.AmountMinor, subtotalMinor, snap.ShippingMinor, snap.DiscountMinor)
	}
	totalMinor := subtotalMinor + taxMinor + snap.ShippingMinor - snap.DiscountMinor

	// Customer resolution failure never aborts the order; we fall back to
	// a guest order and keep going.
	var customerID *uuid.UUID
	customer, err := s.customerRepo.Resolve(ctx, snap)
	if err != nil {
		log.Printf("materialize: customer resolution failed for ledger %s, proceeding as guest: %v", entry.ID, err)
	} else if customer != nil {
		customerID = &customer.ID
	}

	var created *db_models.Order
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order := &db_models.Order{
			OrderNumber:      utils.NewOrderNumber(),
			PaymentReference: entry.ID,
			CustomerID:       customerID,
			Currency:         entry.Currency,
			SubtotalMinor:    subtotalMinor,
			TaxMinor:         taxMinor,
			ShippingMinor:    snap.ShippingMinor,
			DiscountMinor:    snap.DiscountMinor,
			TotalMinor:       totalMinor,
			Status:           db_models.OrderStatusPaid,
		}
		if err := order.SetLineItems(items); err != nil {
			return nil, err
		}

		err = s.orderRepo.Create(ctx, order)
		if err == nil {
			created = order
			break
		}
		if errors.Is(err, utils.ErrDuplicateOrderNumber) {
			continue
		}
		if errors.Is(err, utils.ErrConflict) {
			// a concurrent materialization won the payment_reference
			// uniqueness race; return its order
			winner, ferr := s.orderRepo.FindByPaymentReference(ctx, entry.ID.String())
			if ferr != nil {
				return nil, ferr
			}
			if winner != nil {
				return winner, nil
			}
		}
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("order number collisions exhausted for ledger %s: %w", entry.ID, utils.ErrDuplicateOrderNumber)
	}

	go s.sendConfirmation(snap, created)

	return created, nil
}

func (s *orderService) GetByPaymentReference(ctx context.Context, paymentID string) (*db_models.Order, error) {
	order, err := s.orderRepo.FindByPaymentReference(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, utils.ErrNotFound
	}
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID string, status db_models.OrderStatus) error {
	return s.orderRepo.UpdateStatus(ctx, orderID, status)
}

func buildLineItems(snapItems []db_models.SnapshotItem) ([]db_models.OrderItem, int64) {
	items := make([]db_models.OrderItem, 0, len(snapItems))
	subtotal := decimal.Zero

	for _, it := range snapItems {
		line := decimal.NewFromInt(it.UnitPriceMinor).Mul(decimal.NewFromInt(it.Quantity))
		subtotal = subtotal.Add(line)
		items = append(items, db_models.OrderItem{
			ProductID:      it.ProductID,
			Name:           it.Name,
			UnitPriceMinor: it.UnitPriceMinor,
			Quantity:       it.Quantity,
			LineTotalMinor: line.IntPart(),
		})
	}

	return items, subtotal.Round(2).IntPart()
}

// sendConfirmation is fire-and-forget: a dispatch failure is logged and
// never fails the enclosing materialization.
func (s *orderService) sendConfirmation(snap *db_models.CustomerSnapshot, order *db_models.Order) {
	if s.mail == nil || snap.Email == "" {
		return
	}

	total := decimal.NewFromInt(order.TotalMinor).Div(decimal.NewFromInt(100)).StringFixed(2)
	if err := s.mail.SendOrderConfirmation(snap.Email, snap.Name, order.OrderNumber, total, order.Currency); err != nil {
		log.Printf("mail: order confirmation for %s failed: %v", order.OrderNumber, err)
	}
}
