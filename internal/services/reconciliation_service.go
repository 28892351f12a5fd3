package services

import (
	"context"
	"errors"
	"log"
	"time"

	"jollymart/internal/models/db_models"
	"jollymart/internal/repositories"
	"jollymart/pkg/utils"
)

// ReconcileResult carries the ledger entry after a reconciliation attempt
// plus the materialized order when the entry is completed.
type ReconcileResult struct {
	Entry *db_models.PaymentLedgerEntry
	Order *db_models.Order
}

// ReconciliationService owns all writes to the payment ledger status. Every
// completion channel (webhook push, status poll, manual operator trigger)
// funnels through Reconcile, so whichever signal lands first wins and the
// rest become no-ops.
type ReconciliationService interface {
	Reconcile(ctx context.Context, ledgerID, externalTxnID string, reported GatewayStatus) (*ReconcileResult, error)
	ReconcileByExternalID(ctx context.Context, externalTxnID string, reported GatewayStatus) (*ReconcileResult, error)

	// ResolveStatus serves the client poll: lazy expiry, then an inline
	// gateway query + reconcile while the entry is still pending.
	ResolveStatus(ctx context.Context, ledgerID string) (*db_models.PaymentLedgerEntry, error)
}

type reconciliationService struct {
	ledgerRepo repositories.LedgerRepository
	orders     OrderService
	gateway    GatewayClient
}

func NewReconciliationService(
	ledgerRepo repositories.LedgerRepository,
	orders OrderService,
	gateway GatewayClient) ReconciliationService {
	return &reconciliationService{
		ledgerRepo: ledgerRepo,
		orders:     orders,
		gateway:    gateway,
	}
}

func (s *reconciliationService) Reconcile(ctx context.Context, ledgerID, externalTxnID string, reported GatewayStatus) (*ReconcileResult, error) {
	entry, err := s.ledgerRepo.GetByID(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, utils.ErrNotFound
	}

	entry, err = s.lazyExpire(ctx, entry)
	if err != nil {
		return nil, err
	}

	if entry.Status.IsTerminal() {
		return s.resolveTerminal(ctx, entry, reported)
	}

	if entry.ExternalTransactionID != nil && *entry.ExternalTransactionID != externalTxnID {
		log.Printf("reconcile anomaly: ledger %s signal carries txn %s, recorded txn is %s",
			ledgerID, externalTxnID, *entry.ExternalTransactionID)
		return nil, utils.ErrConflict
	}

	switch reported {
	case GatewayStatusSucceeded:
		return s.complete(ctx, entry, externalTxnID)
	case GatewayStatusFailed:
		return s.transition(ctx, entry, db_models.LedgerStatusFailed, externalTxnID, reported)
	case GatewayStatusCanceled:
		return s.transition(ctx, entry, db_models.LedgerStatusCancelled, externalTxnID, reported)
	default:
		// gateway state is not terminal yet, nothing to apply
		return &ReconcileResult{Entry: entry}, nil
	}
}

func (s *reconciliationService) ReconcileByExternalID(ctx context.Context, externalTxnID string, reported GatewayStatus) (*ReconcileResult, error) {
	entry, err := s.ledgerRepo.FindByExternalTransactionID(ctx, externalTxnID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, utils.ErrNotFound
	}
	return s.Reconcile(ctx, entry.ID.String(), externalTxnID, reported)
}

func (s *reconciliationService) ResolveStatus(ctx context.Context, ledgerID string) (*db_models.PaymentLedgerEntry, error) {
	entry, err := s.ledgerRepo.GetByID(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, utils.ErrNotFound
	}

	entry, err = s.lazyExpire(ctx, entry)
	if err != nil {
		return nil, err
	}

	if entry.Status.IsTerminal() || entry.ExternalTransactionID == nil {
		return entry, nil
	}

	intent, err := s.gateway.GetIntent(ctx, *entry.ExternalTransactionID)
	if err != nil {
		if errors.Is(err, utils.ErrGatewayUnavailable) {
			// transient: report the current state, the next poll retries
			log.Printf("status poll: gateway unavailable for ledger %s: %v", ledgerID, err)
			return entry, nil
		}
		return nil, err
	}

	if !intent.Status.IsTerminal() {
		return entry, nil
	}

	res, err := s.Reconcile(ctx, ledgerID, intent.ID, intent.Status)
	if err != nil {
		return nil, err
	}
	return res.Entry, nil
}

// lazyExpire flips a pending entry past its deadline to expired as a side
// effect of the read. Losing the write race just means another caller did
// the same flip first.
func (s *reconciliationService) lazyExpire(ctx context.Context, entry *db_models.PaymentLedgerEntry) (*db_models.PaymentLedgerEntry, error) {
	if entry.Status != db_models.LedgerStatusPending || time.Now().Unix() <= entry.ExpiresAt {
		return entry, nil
	}

	expired, err := s.ledgerRepo.UpdateStatus(ctx, entry.ID.String(),
		db_models.LedgerStatusPending, db_models.LedgerStatusExpired, nil)
	if errors.Is(err, utils.ErrStaleStatus) {
		return s.reread(ctx, entry.ID.String())
	}
	if err != nil {
		return nil, err
	}
	return expired, nil
}

func (s *reconciliationService) complete(ctx context.Context, entry *db_models.PaymentLedgerEntry, externalTxnID string) (*ReconcileResult, error) {
	// expiry wins over a succeeded signal, re-checked right before the write
	if time.Now().Unix() > entry.ExpiresAt {
		if _, err := s.lazyExpire(ctx, entry); err != nil {
			return nil, err
		}
		return nil, utils.ErrExpired
	}

	updated, err := s.ledgerRepo.UpdateStatus(ctx, entry.ID.String(),
		db_models.LedgerStatusPending, db_models.LedgerStatusCompleted,
		map[string]interface{}{
			"completed_at":            time.Now().Unix(),
			"external_transaction_id": externalTxnID,
		})
	if errors.Is(err, utils.ErrStaleStatus) {
		// a concurrent signal won the conditional write; surface whatever
		// it committed instead of erroring
		committed, rerr := s.reread(ctx, entry.ID.String())
		if rerr != nil {
			return nil, rerr
		}
		return s.resolveTerminal(ctx, committed, GatewayStatusSucceeded)
	}
	if err != nil {
		return nil, err
	}

	order, err := s.orders.Materialize(ctx, updated)
	if err != nil {
		return nil, err
	}
	return &ReconcileResult{Entry: updated, Order: order}, nil
}

func (s *reconciliationService) transition(ctx context.Context, entry *db_models.PaymentLedgerEntry, to db_models.LedgerStatus, externalTxnID string, reported GatewayStatus) (*ReconcileResult, error) {
	updated, err := s.ledgerRepo.UpdateStatus(ctx, entry.ID.String(),
		db_models.LedgerStatusPending, to,
		map[string]interface{}{"external_transaction_id": externalTxnID})
	if errors.Is(err, utils.ErrStaleStatus) {
		committed, rerr := s.reread(ctx, entry.ID.String())
		if rerr != nil {
			return nil, rerr
		}
		return s.resolveTerminal(ctx, committed, reported)
	}
	if err != nil {
		return nil, err
	}
	return &ReconcileResult{Entry: updated}, nil
}

// resolveTerminal decides what an incoming signal means against an entry
// that already reached a terminal state. Matching signals are idempotent
// no-ops; a succeeded signal against failed/cancelled is an anomaly that is
// logged and refused, never overwritten.
func (s *reconciliationService) resolveTerminal(ctx context.Context, entry *db_models.PaymentLedgerEntry, reported GatewayStatus) (*ReconcileResult, error) {
	if !reported.IsTerminal() {
		return &ReconcileResult{Entry: entry}, nil
	}

	switch entry.Status {
	case db_models.LedgerStatusCompleted:
		if reported == GatewayStatusSucceeded {
			// idempotent replay; Materialize returns the existing order
			order, err := s.orders.Materialize(ctx, entry)
			if err != nil {
				return nil, err
			}
			return &ReconcileResult{Entry: entry, Order: order}, nil
		}
	case db_models.LedgerStatusExpired:
		if reported == GatewayStatusSucceeded {
			// the payment landed after the QR deadline; no order
			return nil, utils.ErrExpired
		}
		return &ReconcileResult{Entry: entry}, nil
	case db_models.LedgerStatusFailed:
		if reported == GatewayStatusFailed {
			return &ReconcileResult{Entry: entry}, nil
		}
	case db_models.LedgerStatusCancelled:
		if reported == GatewayStatusCanceled {
			return &ReconcileResult{Entry: entry}, nil
		}
	}

	log.Printf("reconcile anomaly: ledger %s is %s but gateway reports %s",
		entry.ID, entry.Status, reported)
	return nil, utils.ErrConflict
}

func (s *reconciliationService) reread(ctx context.Context, ledgerID string) (*db_models.PaymentLedgerEntry, error) {
	entry, err := s.ledgerRepo.GetByID(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, utils.ErrNotFound
	}
	return entry, nil
}
