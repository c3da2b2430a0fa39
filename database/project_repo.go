package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/tenant-site-backend/models"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// FindAll returns all projects of the tenant
func (r *ProjectRepo) FindAll(ctx context.Context, tenantID uuid.UUID) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&projects).Error
	return projects, mapError(err, "projects")
}

// FindByID returns a project by its ID
func (r *ProjectRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, mapError(err, "project")
	}
	return &project, nil
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	return mapError(r.db.WithContext(ctx).Create(project).Error, "project")
}

// Update updates an existing project in the database
func (r *ProjectRepo) Update(ctx context.Context, project *models.Project) error {
	return mapError(r.db.WithContext(ctx).Save(project).Error, "project")
}

// Delete removes a project from the database by id
func (r *ProjectRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.Project{})
	if res.Error != nil {
		return mapError(res.Error, "project")
	}
	if res.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "project")
	}
	return nil
}
