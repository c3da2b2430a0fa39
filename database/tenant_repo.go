package database

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/tenant-site-backend/models"
)

type TenantRepo struct {
	db *gorm.DB
}

func NewTenantRepo(db *gorm.DB) *TenantRepo {
	return &TenantRepo{db}
}

// FindAll returns all tenants ordered by slug
func (r *TenantRepo) FindAll(ctx context.Context) ([]*models.Tenant, error) {
	var tenants []*models.Tenant
	err := r.db.WithContext(ctx).Order("slug ASC").Find(&tenants).Error
	return tenants, mapError(err, "tenants")
}

// FindByID returns a tenant by its ID
func (r *TenantRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, mapError(err, "tenant")
	}
	return &tenant, nil
}

// FindBySlug returns nil without error when no tenant uses the slug
func (r *TenantRepo) FindBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	return r.findOne(ctx, "slug = ?", strings.ToLower(strings.TrimSpace(slug)))
}

// FindByDomain returns nil without error when no tenant uses the domain
func (r *TenantRepo) FindByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	return r.findOne(ctx, "domain = ?", strings.ToLower(strings.TrimSpace(domain)))
}

func (r *TenantRepo) findOne(ctx context.Context, query string, arg string) (*models.Tenant, error) {
	if arg == "" {
		return nil, nil
	}
	var tenants []models.Tenant
	if err := r.db.WithContext(ctx).Where(query, arg).Limit(1).Find(&tenants).Error; err != nil {
		return nil, mapError(err, "tenant")
	}
	if len(tenants) == 0 {
		return nil, nil
	}
	return &tenants[0], nil
}

// Add inserts a new tenant into the database
func (r *TenantRepo) Add(ctx context.Context, tenant *models.Tenant) error {
	return mapError(r.db.WithContext(ctx).Create(tenant).Error, "tenant")
}

// Update updates an existing tenant in the database
func (r *TenantRepo) Update(ctx context.Context, tenant *models.Tenant) error {
	return mapError(r.db.WithContext(ctx).Save(tenant).Error, "tenant")
}
