package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/tenant-site-backend/models"
)

type PageRepo struct {
	db *gorm.DB
}

func NewPageRepo(db *gorm.DB) *PageRepo {
	return &PageRepo{db}
}

// FindAll returns all pages of the tenant
func (r *PageRepo) FindAll(ctx context.Context, tenantID uuid.UUID) ([]*models.Page, error) {
	var pages []*models.Page
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("slug ASC").Find(&pages).Error
	return pages, mapError(err, "pages")
}

// FindByID returns a page by its ID
func (r *PageRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Page, error) {
	var page models.Page
	if err := r.db.WithContext(ctx).First(&page, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, mapError(err, "page")
	}
	return &page, nil
}

// FindPublishedBySlug returns a published page
func (r *PageRepo) FindPublishedBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Page, error) {
	var page models.Page
	err := r.db.WithContext(ctx).First(&page, "tenant_id = ? AND slug = ? AND published = ?", tenantID, slug, true).Error
	if err != nil {
		return nil, mapError(err, "page")
	}
	return &page, nil
}

// Add inserts a new page into the database
func (r *PageRepo) Add(ctx context.Context, page *models.Page) error {
	return mapError(r.db.WithContext(ctx).Create(page).Error, "page")
}

// Update updates an existing page in the database
func (r *PageRepo) Update(ctx context.Context, page *models.Page) error {
	return mapError(r.db.WithContext(ctx).Save(page).Error, "page")
}

// Delete removes a page from the database by id
func (r *PageRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.Page{})
	if res.Error != nil {
		return mapError(res.Error, "page")
	}
	if res.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "page")
	}
	return nil
}
