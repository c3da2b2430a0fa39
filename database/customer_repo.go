package database

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/tenant-site-backend/models"
)

type CustomerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) *CustomerRepo {
	return &CustomerRepo{db}
}

// FindAll returns the tenant's customers, newest first
func (r *CustomerRepo) FindAll(ctx context.Context, tenantID uuid.UUID) ([]*models.Customer, error) {
	var customers []*models.Customer
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&customers).Error
	return customers, mapError(err, "customers")
}

// FindByID returns a customer by its ID
func (r *CustomerRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, mapError(err, "customer")
	}
	return &customer, nil
}

// FindByEmail returns nil without error when no customer has the email
func (r *CustomerRepo) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.Customer, error) {
	var customers []models.Customer
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND email = ?", tenantID, strings.ToLower(strings.TrimSpace(email))).
		Limit(1).
		Find(&customers).Error
	if err != nil {
		return nil, mapError(err, "customer")
	}
	if len(customers) == 0 {
		return nil, nil
	}
	return &customers[0], nil
}

// Add inserts a new customer into the database
func (r *CustomerRepo) Add(ctx context.Context, customer *models.Customer) error {
	return mapError(r.db.WithContext(ctx).Create(customer).Error, "customer")
}

// IncrementOrderCount bumps the order counter in place
func (r *CustomerRepo) IncrementOrderCount(ctx context.Context, tenantID, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		UpdateColumn("order_count", gorm.Expr("order_count + 1")).Error
	return mapError(err, "customer")
}
