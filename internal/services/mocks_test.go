package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"jollymart/internal/models/db_models"
	"jollymart/internal/services"
	"jollymart/pkg/utils"
)

// fakeLedgerRepo is an in-memory LedgerRepository with the same
// compare-and-set semantics as the gorm implementation: UpdateStatus only
// lands while the entry still has the expected prior status.
type fakeLedgerRepo struct {
	mu      sync.Mutex
	entries map[string]*db_models.PaymentLedgerEntry
	created int
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{entries: make(map[string]*db_models.PaymentLedgerEntry)}
}

func (r *fakeLedgerRepo) put(entry *db_models.PaymentLedgerEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries[entry.ID.String()] = &cp
}

func (r *fakeLedgerRepo) Create(ctx context.Context, entry *db_models.PaymentLedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	now := time.Now().Unix()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	cp := *entry
	r.entries[entry.ID.String()] = &cp
	r.created++
	return nil
}

func (r *fakeLedgerRepo) GetByID(ctx context.Context, id string) (*db_models.PaymentLedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

func (r *fakeLedgerRepo) FindByExternalTransactionID(ctx context.Context, externalID string) (*db_models.PaymentLedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.ExternalTransactionID != nil && *entry.ExternalTransactionID == externalID {
			cp := *entry
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeLedgerRepo) UpdateStatus(ctx context.Context, id string, from, to db_models.LedgerStatus, fields map[string]interface{}) (*db_models.PaymentLedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || entry.Status != from {
		return nil, utils.ErrStaleStatus
	}

	entry.Status = to
	entry.UpdatedAt = time.Now().Unix()
	for k, v := range fields {
		switch k {
		case "completed_at":
			ts := v.(int64)
			entry.CompletedAt = &ts
		case "external_transaction_id":
			s := v.(string)
			entry.ExternalTransactionID = &s
		}
	}
	cp := *entry
	return &cp, nil
}

// fakeOrders implements services.OrderService with at-most-one order per
// payment reference, mirroring the real materializer's idempotency.
type fakeOrders struct {
	mu           sync.Mutex
	orders       map[string]*db_models.Order
	materialized int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[string]*db_models.Order)}
}

func (f *fakeOrders) Materialize(ctx context.Context, entry *db_models.PaymentLedgerEntry) (*db_models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.materialized++
	if existing, ok := f.orders[entry.ID.String()]; ok {
		return existing, nil
	}

	order := &db_models.Order{
		OrderNumber:      "JM-TEST-0001",
		PaymentReference: entry.ID,
		Currency:         entry.Currency,
		TotalMinor:       entry.AmountMinor,
		Status:           db_models.OrderStatusPaid,
	}
	order.ID = uuid.New()
	f.orders[entry.ID.String()] = order
	return order, nil
}

func (f *fakeOrders) GetByPaymentReference(ctx context.Context, paymentID string) (*db_models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[paymentID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return order, nil
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, orderID string, status db_models.OrderStatus) error {
	return nil
}

func (f *fakeOrders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

// fakeGateway routes calls through function fields.
type fakeGateway struct {
	createFn func(ctx context.Context, amountMinor int64, currency, description string) (*services.Intent, error)
	getFn    func(ctx context.Context, id string) (*services.Intent, error)
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency, description string) (*services.Intent, error) {
	return g.createFn(ctx, amountMinor, currency, description)
}

func (g *fakeGateway) GetIntent(ctx context.Context, id string) (*services.Intent, error) {
	return g.getFn(ctx, id)
}

func pendingEntry(amountMinor int64, expiresAt int64, externalID string) *db_models.PaymentLedgerEntry {
	entry := &db_models.PaymentLedgerEntry{
		AmountMinor: amountMinor,
		Currency:    "USD",
		Status:      db_models.LedgerStatusPending,
		ExpiresAt:   expiresAt,
	}
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().Unix()
	entry.UpdatedAt = entry.CreatedAt
	if externalID != "" {
		entry.ExternalTransactionID = &externalID
	}
	_ = entry.SetSnapshot(&db_models.CustomerSnapshot{
		Name:  "Holly Day",
		Email: "holly@example.com",
		Items: []db_models.SnapshotItem{
			{ProductID: "p1", Name: "Wreath", UnitPriceMinor: 4600, Quantity: 2},
		},
	})
	return entry
}
