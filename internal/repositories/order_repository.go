package repositories

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"jollymart/internal/models/db_models"
	"jollymart/pkg/utils"
)

type OrderRepository interface {
	Create(ctx context.Context, order *db_models.Order) error
	FindByPaymentReference(ctx context.Context, paymentID string) (*db_models.Order, error)
	UpdateStatus(ctx context.Context, id string, status db_models.OrderStatus) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

const pgUniqueViolation = "23505"

func (r *orderRepository) Create(ctx context.Context, order *db_models.Order) error {
	err := r.db.WithContext(ctx).Create(order).Error
	if err == nil {
		return nil
	}

	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		// order_number and payment_reference are both unique; the
		// constraint name tells them apart.
		if pgErr.Constraint == "idx_orders_order_number" {
			return utils.ErrDuplicateOrderNumber
		}
		return utils.ErrConflict
	}
	return err
}

func (r *orderRepository) FindByPaymentReference(ctx context.Context, paymentID string) (*db_models.Order, error) {
	var order db_models.Order
	err := r.db.WithContext(ctx).First(&order, "payment_reference = ?", paymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status db_models.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&db_models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}
