package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"jollymart/internal/models/db_models"
	"jollymart/pkg/utils"
)

// LedgerRepository is the persistence boundary for payment ledger entries.
// Status writes are compare-and-set: UpdateStatus only lands if the entry is
// still in the expected prior status, so concurrent reconciliation attempts
// cannot overwrite each other.
type LedgerRepository interface {
	Create(ctx context.Context, entry *db_models.PaymentLedgerEntry) error
	GetByID(ctx context.Context, id string) (*db_models.PaymentLedgerEntry, error)
	FindByExternalTransactionID(ctx context.Context, externalID string) (*db_models.PaymentLedgerEntry, error)
	UpdateStatus(ctx context.Context, id string, from, to db_models.LedgerStatus, fields map[string]interface{}) (*db_models.PaymentLedgerEntry, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Create(ctx context.Context, entry *db_models.PaymentLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ledgerRepository) GetByID(ctx context.Context, id string) (*db_models.PaymentLedgerEntry, error) {
	var entry db_models.PaymentLedgerEntry
	err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *ledgerRepository) FindByExternalTransactionID(ctx context.Context, externalID string) (*db_models.PaymentLedgerEntry, error) {
	var entry db_models.PaymentLedgerEntry
	err := r.db.WithContext(ctx).First(&entry, "external_transaction_id = ?", externalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *ledgerRepository) UpdateStatus(ctx context.Context, id string, from, to db_models.LedgerStatus, fields map[string]interface{}) (*db_models.PaymentLedgerEntry, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}

	res := r.db.WithContext(ctx).
		Model(&db_models.PaymentLedgerEntry{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.ErrStaleStatus
	}

	return r.GetByID(ctx, id)
}
