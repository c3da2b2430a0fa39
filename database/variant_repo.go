package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/tenant-site-backend/models"
)

type VariantRepo struct {
	db *gorm.DB
}

func NewVariantRepo(db *gorm.DB) *VariantRepo {
	return &VariantRepo{db}
}

// FindByProduct returns the variants of a product ordered by creation
func (r *VariantRepo) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*models.ProductVariant, error) {
	var variants []*models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("created_at ASC").
		Find(&variants).Error
	return variants, mapError(err, "variants")
}

// FindByID returns a variant by its ID
func (r *VariantRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).First(&variant, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, mapError(err, "variant")
	}
	return &variant, nil
}

// SKUInUse reports whether another variant of the tenant carries sku
func (r *VariantRepo) SKUInUse(ctx context.Context, tenantID uuid.UUID, sku string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("tenant_id = ? AND sku = ? AND id <> ?", tenantID, sku, excludeID).
		Count(&count).Error
	return count > 0, mapError(err, "variant")
}

// CountByProduct counts the variants referencing a product
func (r *VariantRepo) CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Count(&count).Error
	return count, mapError(err, "variant")
}

// Add inserts a new variant into the database
func (r *VariantRepo) Add(ctx context.Context, variant *models.ProductVariant) error {
	return mapError(r.db.WithContext(ctx).Create(variant).Error, "variant")
}

// Update updates an existing variant in the database
func (r *VariantRepo) Update(ctx context.Context, variant *models.ProductVariant) error {
	return mapError(r.db.WithContext(ctx).Save(variant).Error, "variant")
}

// Delete removes a variant from the database by id
func (r *VariantRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.ProductVariant{})
	if res.Error != nil {
		return mapError(res.Error, "variant")
	}
	if res.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "variant")
	}
	return nil
}
