package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/tenant-site-backend/models"
)

type ProductRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db}
}

// FindAll returns the tenant's products, optionally filtered by status
func (r *ProductRepo) FindAll(ctx context.Context, tenantID uuid.UUID, status string) ([]*models.Product, error) {
	var products []*models.Product
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Find(&products).Error
	return products, mapError(err, "products")
}

// FindByID returns a product by its ID
func (r *ProductRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, mapError(err, "product")
	}
	return &product, nil
}

// FindBySlug returns a product with its variants preloaded
func (r *ProductRepo) FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", "is_active = ?", true).
		First(&product, "tenant_id = ? AND slug = ?", tenantID, slug).Error
	if err != nil {
		return nil, mapError(err, "product")
	}
	return &product, nil
}

// SKUInUse reports whether another product of the tenant carries sku
func (r *ProductRepo) SKUInUse(ctx context.Context, tenantID uuid.UUID, sku string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("tenant_id = ? AND sku = ? AND id <> ?", tenantID, sku, excludeID).
		Count(&count).Error
	return count > 0, mapError(err, "product")
}

// SetHasVariants updates only the has_variants flag
func (r *ProductRepo) SetHasVariants(ctx context.Context, tenantID, id uuid.UUID, hasVariants bool) error {
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		UpdateColumn("has_variants", hasVariants).Error
	return mapError(err, "product")
}

// Add inserts a new product into the database
func (r *ProductRepo) Add(ctx context.Context, product *models.Product) error {
	return mapError(r.db.WithContext(ctx).Omit("Variants").Create(product).Error, "product")
}

// Update updates an existing product in the database
func (r *ProductRepo) Update(ctx context.Context, product *models.Product) error {
	return mapError(r.db.WithContext(ctx).Omit("Variants").Save(product).Error, "product")
}

// Delete removes a product and, through the cascade, its variants
func (r *ProductRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.Product{})
	if res.Error != nil {
		return mapError(res.Error, "product")
	}
	if res.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "product")
	}
	return nil
}
