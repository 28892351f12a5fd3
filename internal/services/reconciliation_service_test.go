package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jollymart/internal/models/db_models"
	"jollymart/internal/services"
	"jollymart/pkg/utils"
)

func newReconciler(ledger *fakeLedgerRepo, orders *fakeOrders, gateway services.GatewayClient) services.ReconciliationService {
	return services.NewReconciliationService(ledger, orders, gateway)
}

func TestReconcile_SucceededCompletesAndMaterializes(t *testing.T) {
	ledger := newFakeLedgerRepo()
	orders := newFakeOrders()
	entry := pendingEntry(10000, time.Now().Add(15*time.Minute).Unix(), "pi_123")
	ledger.put(entry)

	svc := newReconciler(ledger, orders, &fakeGateway{})

	res, err := svc.Reconcile(context.Background(), entry.ID.String(), "pi_123", services.GatewayStatusSucceeded)
	require.NoError(t, err)
	require.Equal(t, db_models.LedgerStatusCompleted, res.Entry.Status)
	require.NotNil(t, res.Entry.CompletedAt)
	require.NotNil(t, res.Entry.ExternalTransactionID)
	require.Equal(t, "pi_123", *res.Entry.ExternalTransactionID)
	require.NotNil(t, res.Order)
	require.Equal(t, 1, orders.count())
}

func TestReconcile_SecondSucceededSignalIsNoOp(t *testing.T) {
	ledger := newFakeLedgerRepo()
	orders := newFakeOrders()
	entry := pendingEntry(10000, time.Now().Add(15*time.Minute).Unix(), "pi_123")
	ledger.put(entry)

	svc := newReconciler(ledger, orders, &fakeGateway{})

	first, err := svc.Reconcile(context.Background(), entry.ID.String(), "pi_123", services.GatewayStatusSucceeded)
	require.NoError(t, err)

	second, err := svc.Reconcile(context.Background(), entry.ID.String(), "pi_123", services.GatewayStatusSucceeded)
	require.NoError(t, err)
	require.Equal(t, db_models.LedgerStatusCompleted, second.Entry.Status)

	require.Equal(t, 1, orders.count())
	require.Equal(t, first.Order.ID, second.Order.ID)
}

func TestReconcile_ConcurrentSignalsProduceOneOrder(t *testing.T) {
	ledger := newFakeLedgerRepo()
	orders := newFakeOrders()
	entry := pendingEntry(10000, time.Now().Add(15*time.Minute).Unix(), "pi_123")
	ledger.put(entry)

	svc := newReconciler(ledger, orders, &fakeGateway{})

	const callers = 2
	results := make([]*services.ReconcileResult, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Reconcile(context.Background(), entry.ID.String(), "pi_123", services.GatewayStatusSucceeded)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i].Order)
	}
	require.Equal(t, 1, orders.count())
	require.Equal(t, results[0].Order.ID, results[1].Order.ID)
}

func TestReconcile_ExpiryBeatsSucceededSignal(t *testing.T) {
	ledger := newFakeLedgerRepo()
	orders := newFakeOrders()
	entry := pendingEntry(10000, time.Now().Add(-1*time.Second).Unix(), "pi_123")
	ledger.put(entry)

	svc := newReconciler(ledger, orders, &fakeGateway{})

	_, err := svc.Reconcile(context.Background(), entry.ID.String(), "pi_123", services.GatewayStatusSucceeded)
	require.ErrorIs(t, err, utils.ErrExpired)

	stored, gerr := ledger.GetByID(context.Background(), entry.ID.String())
	require.NoError(t, gerr)
	require.Equal(t, db_models.LedgerStatusExpired, stored.Status)
	require.Equal(t, 0, orders.count())
}

func TestReconcile_SucceededAgainstFailedIsConflict(t *testing.T) {
	ledger := newFakeLedgerRepo()
	orders := newFakeOrders()
	entry := pendingEntry(10000, time.Now().Add(15*time.Minute).Unix(), "pi_123")
	entry.Status = db_models.LedgerStatusFailed
	ledger.put(entry)

	svc := newReconciler(ledger, orders, &fakeGateway{})

	_, err := svc.Reconcile(context.Background(), entry.ID.String(), "pi_123", services.GatewayStatusSucceeded)
	require.ErrorIs(t, err, utils.ErrConflict)

	stored, gerr := ledger.GetByID(context.Background(), entry.ID.String())
	require.NoError(t, gerr)
	require.Equal(t, db_models.LedgerStatusFailed, stored.Status)
	require.Equal(t, 0, orders.count())
}

func TestReconcile_UnknownLedgerIsNotFound(t *testing.T) {
	svc := newReconciler(newFakeLedgerRepo(), newFakeOrders(), &fakeGateway{})

	_, err := svc.Reconcile(context.Background(), "2c7f5f9e-cc57-4fd8-9c02-3e438f2d0a11", "pi_123", services.GatewayStatusSucceeded)
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestReconcile_FailureSignalMarksFailedWithoutOrder(t *testing.T) {
	ledger := newFakeLedgerRepo()
	orders := newFakeOrders()
	entry := pendingEntry(10000, time.Now().Add(15*time.Minute).Unix(), "pi_123")
	ledger.put(entry)

	svc := newReconciler(ledger, orders, &fakeGateway{})

	res, err := svc.Reconcile(context.Background(), entry.ID.String(), "pi_123", services.GatewayStatusFailed)
	require.NoError(t, err)
	require.Equal(t, db_models.LedgerStatusFailed, res.Entry.Status)
	require.Nil(t, res.Order)
	require.Equal(t, 0, orders.count())
}

func TestReconcile_MismatchedExternalTxnIsConflict(t *testing.T) {
	ledger := newFakeLedgerRepo()
	entry := pendingEntry(10000, time.Now().Add(15*time.Minute).Unix(), "pi_123")
	ledger.put(entry)

	svc := newReconciler(ledger, newFakeOrders(), &fakeGateway{})

	_, err := svc.Reconcile(context.Background(), entry.ID.String(), "pi_other", services.GatewayStatusSucceeded)
	require.ErrorIs(t, err, utils.ErrConflict)
}

func TestReconcileByExternalID_FindsEntry(t *testing.T) {
	ledger := newFakeLedgerRepo()
	orders := newFakeOrders()
	entry := pendingEntry(10000, time.Now().Add(15*time.Minute).Unix(), "pi_123")
	ledger.put(entry)

	svc := newReconciler(ledger, orders, &fakeGateway{})

	res, err := svc.ReconcileByExternalID(context.Background(), "pi_123", services.GatewayStatusSucceeded)
	require.NoError(t, err)
	require.Equal(t, db_models.LedgerStatusCompleted, res.Entry.Status)

	_, err = svc.ReconcileByExternalID(context.Background(), "pi_unknown", services.GatewayStatusSucceeded)
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestResolveStatus_PendingPollReconcilesInline(t *testing.T) {
	ledger := newFakeLedgerRepo()
	orders := newFakeOrders()
	entry := pendingEntry(10000, time.Now().Add(15*time.Minute).Unix(), "pi_123")
	ledger.put(entry)

	gateway := &fakeGateway{
		getFn: func(ctx context.Context, id string) (*services.Intent, error) {
			return &services.Intent{ID: id, Status: services.GatewayStatusSucceeded, AmountMinor: 10000, Currency: "USD"}, nil
		},
	}
	svc := newReconciler(ledger, orders, gateway)

	got, err := svc.ResolveStatus(context.Background(), entry.ID.String())
	require.NoError(t, err)
	require.Equal(t, db_models.LedgerStatusCompleted, got.Status)
	require.Equal(t, 1, orders.count())
}

func TestResolveStatus_TransientGatewayErrorLeavesPending(t *testing.T) {
	ledger := newFakeLedgerRepo()
	orders := newFakeOrders()
	entry := pendingEntry(10000, time.Now().Add(15*time.Minute).Unix(), "pi_123")
	ledger.put(entry)

	gateway := &fakeGateway{
		getFn: func(ctx context.Context, id string) (*services.Intent, error) {
			return nil, utils.ErrGatewayUnavailable
		},
	}
	svc := newReconciler(ledger, orders, gateway)

	got, err := svc.ResolveStatus(context.Background(), entry.ID.String())
	require.NoError(t, err)
	require.Equal(t, db_models.LedgerStatusPending, got.Status)
	require.Equal(t, 0, orders.count())
}

func TestResolveStatus_LazyExpiryWithoutGatewayCall(t *testing.T) {
	ledger := newFakeLedgerRepo()
	entry := pendingEntry(10000, time.Now().Add(-1*time.Second).Unix(), "pi_123")
	ledger.put(entry)

	gatewayCalled := false
	gateway := &fakeGateway{
		getFn: func(ctx context.Context, id string) (*services.Intent, error) {
			gatewayCalled = true
			return nil, nil
		},
	}
	svc := newReconciler(ledger, newFakeOrders(), gateway)

	got, err := svc.ResolveStatus(context.Background(), entry.ID.String())
	require.NoError(t, err)
	require.Equal(t, db_models.LedgerStatusExpired, got.Status)
	require.False(t, gatewayCalled)
}

func TestResolveStatus_ProcessingIsNoOp(t *testing.T) {
	ledger := newFakeLedgerRepo()
	entry := pendingEntry(10000, time.Now().Add(15*time.Minute).Unix(), "pi_123")
	ledger.put(entry)

	gateway := &fakeGateway{
		getFn: func(ctx context.Context, id string) (*services.Intent, error) {
			return &services.Intent{ID: id, Status: services.GatewayStatusProcessing}, nil
		},
	}
	svc := newReconciler(ledger, newFakeOrders(), gateway)

	got, err := svc.ResolveStatus(context.Background(), entry.ID.String())
	require.NoError(t, err)
	require.Equal(t, db_models.LedgerStatusPending, got.Status)
}
