package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/tenant-site-backend/models"
)

type OrderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) *OrderRepo {
	return &OrderRepo{db}
}

// FindAll returns the tenant's orders with their customer, newest first
func (r *OrderRepo) FindAll(ctx context.Context, tenantID uuid.UUID, status string) ([]*models.Order, error) {
	var orders []*models.Order
	q := r.db.WithContext(ctx).Preload("Customer").Where("tenant_id = ?", tenantID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("order_number DESC").Find(&orders).Error
	return orders, mapError(err, "orders")
}

// FindByID returns an order with its customer
func (r *OrderRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Customer").First(&order, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		return nil, mapError(err, "order")
	}
	return &order, nil
}

// LatestNumber returns the highest order number of the tenant, 0 when there are none
func (r *OrderRepo) LatestNumber(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var latest int
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("tenant_id = ?", tenantID).
		Select("COALESCE(MAX(order_number), 0)").
		Scan(&latest).Error
	return latest, mapError(err, "order")
}

// Add inserts a new order into the database
func (r *OrderRepo) Add(ctx context.Context, order *models.Order) error {
	return mapError(r.db.WithContext(ctx).Omit("Customer").Create(order).Error, "order")
}

// UpdateStatus changes only the order status
func (r *OrderRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("status", status)
	if res.Error != nil {
		return mapError(res.Error, "order")
	}
	if res.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "order")
	}
	return nil
}
