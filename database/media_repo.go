package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/tenant-site-backend/models"
)

type MediaRepo struct {
	db *gorm.DB
}

func NewMediaRepo(db *gorm.DB) *MediaRepo {
	return &MediaRepo{db}
}

// FindAll returns the tenant's media, newest first
func (r *MediaRepo) FindAll(ctx context.Context, tenantID uuid.UUID) ([]*models.Media, error) {
	var media []*models.Media
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&media).Error
	return media, mapError(err, "media")
}

// FindByID returns a media record by its ID
func (r *MediaRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Media, error) {
	var media models.Media
	if err := r.db.WithContext(ctx).First(&media, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, mapError(err, "media")
	}
	return &media, nil
}

// Add inserts a new media record into the database
func (r *MediaRepo) Add(ctx context.Context, media *models.Media) error {
	return mapError(r.db.WithContext(ctx).Create(media).Error, "media")
}

// Delete removes a media record from the database by id
func (r *MediaRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return mapError(r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.Media{}).Error, "media")
}
