package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/tenant-site-backend/models"
)

type InquiryRepo struct {
	db *gorm.DB
}

func NewInquiryRepo(db *gorm.DB) *InquiryRepo {
	return &InquiryRepo{db}
}

// FindAll returns the tenant's inquiries, optionally filtered by status
func (r *InquiryRepo) FindAll(ctx context.Context, tenantID uuid.UUID, status string) ([]*models.Inquiry, error) {
	var inquiries []*models.Inquiry
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Find(&inquiries).Error
	return inquiries, mapError(err, "inquiries")
}

// Add inserts a new inquiry into the database
func (r *InquiryRepo) Add(ctx context.Context, inquiry *models.Inquiry) error {
	return mapError(r.db.WithContext(ctx).Create(inquiry).Error, "inquiry")
}

// UpdateStatus changes only the inquiry status
func (r *InquiryRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Inquiry{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("status", status)
	if res.Error != nil {
		return mapError(res.Error, "inquiry")
	}
	if res.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "inquiry")
	}
	return nil
}
