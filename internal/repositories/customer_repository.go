package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"jollymart/internal/models/db_models"
)

// CustomerRepository deduplicates customers by email: Resolve creates the
// record if absent and refreshes contact fields in place otherwise.
type CustomerRepository interface {
	FindByEmail(ctx context.Context, email string) (*db_models.Customer, error)
	Resolve(ctx context.Context, snapshot *db_models.CustomerSnapshot) (*db_models.Customer, error)
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) FindByEmail(ctx context.Context, email string) (*db_models.Customer, error) {
	var customer db_models.Customer
	err := r.db.WithContext(ctx).First(&customer, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Resolve(ctx context.Context, snapshot *db_models.CustomerSnapshot) (*db_models.Customer, error) {
	existing, err := r.FindByEmail(ctx, snapshot.Email)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		customer := &db_models.Customer{
			Name:    snapshot.Name,
			Email:   snapshot.Email,
			Phone:   snapshot.Phone,
			Address: snapshot.Address,
		}
		if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
			return nil, err
		}
		return customer, nil
	}

	updates := map[string]interface{}{
		"name":    snapshot.Name,
		"phone":   snapshot.Phone,
		"address": snapshot.Address,
	}
	if err := r.db.WithContext(ctx).Model(existing).Updates(updates).Error; err != nil {
		return nil, err
	}
	return existing, nil
}
