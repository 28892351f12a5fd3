package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"jollymart/internal/models/db_models"
	"jollymart/internal/models/request_models"
	"jollymart/internal/models/response_models"
	"jollymart/internal/repositories"
)

type PaymentConfig struct {
	// TTL is the fixed window between QR issuance and expiry. Set at
	// creation, never extended.
	TTL        time.Duration
	AppBaseURL string // base for the QR target URL, e.g. https://shop.example.com
}

type PaymentService interface {
	CreatePayment(ctx context.Context, req *request_models.CreatePaymentRequest) (*response_models.CreatePaymentResponse, error)
	Status(ctx context.Context, paymentID string) (*response_models.PaymentStatusResponse, error)
}

type paymentService struct {
	ledgerRepo repositories.LedgerRepository
	gateway    GatewayClient
	reconciler ReconciliationService
	cfg        PaymentConfig
}

func NewPaymentService(
	ledgerRepo repositories.LedgerRepository,
	gateway GatewayClient,
	reconciler ReconciliationService,
	cfg PaymentConfig) (PaymentService, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = 15 * time.Minute
	}
	if cfg.AppBaseURL == "" {
		return nil, errors.New("missing app base url for QR targets")
	}

	return &paymentService{
		ledgerRepo: ledgerRepo,
		gateway:    gateway,
		reconciler: reconciler,
		cfg:        cfg,
	}, nil
}

func (s *paymentService) CreatePayment(ctx context.Context, req *request_models.CreatePaymentRequest) (*response_models.CreatePaymentResponse, error) {
	snap := &db_models.CustomerSnapshot{
		Name:          req.Customer.Name,
		Email:         req.Customer.Email,
		Phone:         req.Customer.Phone,
		Address:       req.Customer.Address,
		ShippingMinor: req.ShippingMinor,
		DiscountMinor: req.DiscountMinor,
	}
	for _, item := range req.Items {
		snap.Items = append(snap.Items, db_models.SnapshotItem{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceMinor: item.UnitPriceMinor,
			Quantity:       item.Quantity,
		})
	}

	now := time.Now().Unix()
	entry := &db_models.PaymentLedgerEntry{
		AmountMinor: req.AmountMinor,
		Currency:    strings.ToUpper(req.Currency),
		Status:      db_models.LedgerStatusPending,
		ExpiresAt:   now + int64(s.cfg.TTL.Seconds()),
	}
	if err := entry.SetSnapshot(snap); err != nil {
		return nil, err
	}

	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create ledger entry: %w", err)
	}

	intent, err := s.gateway.CreateIntent(ctx, entry.AmountMinor, entry.Currency,
		fmt.Sprintf("jollymart payment %s", entry.ID))
	if err != nil {
		// best effort; the entry expires on its own if this write loses
		if _, uerr := s.ledgerRepo.UpdateStatus(ctx, entry.ID.String(),
			db_models.LedgerStatusPending, db_models.LedgerStatusFailed, nil); uerr != nil {
			log.Printf("create payment: could not mark ledger %s failed: %v", entry.ID, uerr)
		}
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	if _, err := s.ledgerRepo.UpdateStatus(ctx, entry.ID.String(),
		db_models.LedgerStatusPending, db_models.LedgerStatusPending,
		map[string]interface{}{"external_transaction_id": intent.ID}); err != nil {
		return nil, fmt.Errorf("link ledger %s to intent %s: %w", entry.ID, intent.ID, err)
	}

	return &response_models.CreatePaymentResponse{
		PaymentID:             entry.ID,
		ExternalTransactionID: intent.ID,
		QRCodeTargetURL:       fmt.Sprintf("%s/pay/%s", strings.TrimRight(s.cfg.AppBaseURL, "/"), entry.ID),
		AmountMinor:           entry.AmountMinor,
		Currency:              entry.Currency,
		ExpiresAt:             entry.ExpiresAt,
	}, nil
}

func (s *paymentService) Status(ctx context.Context, paymentID string) (*response_models.PaymentStatusResponse, error) {
	entry, err := s.reconciler.ResolveStatus(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	return &response_models.PaymentStatusResponse{
		PaymentID:   entry.ID,
		Status:      string(entry.Status),
		AmountMinor: entry.AmountMinor,
		Currency:    entry.Currency,
		LastUpdated: entry.UpdatedAt,
	}, nil
}
