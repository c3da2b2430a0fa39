package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rpupo63/tenant-site-backend/models"
)

type HighlightRepo struct {
	db *gorm.DB
}

func NewHighlightRepo(db *gorm.DB) *HighlightRepo {
	return &HighlightRepo{db}
}

// FindAll returns the tenant's highlights, featured first
func (r *HighlightRepo) FindAll(ctx context.Context, tenantID uuid.UUID) ([]*models.ProjectHighlight, error) {
	var highlights []*models.ProjectHighlight
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("featured DESC, synced_at DESC").
		Find(&highlights).Error
	return highlights, mapError(err, "highlights")
}

// Upsert inserts the highlight or overwrites the one mirroring the same project
func (r *HighlightRepo) Upsert(ctx context.Context, highlight *models.ProjectHighlight) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "summary", "image_url", "featured", "synced_at", "updated_at"}),
	}).Create(highlight).Error
	return mapError(err, "highlight")
}

// DeleteByProject removes the highlight mirroring a project; a missing row is not an error
func (r *HighlightRepo) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.ProjectHighlight{}).Error
	return mapError(err, "highlight")
}
