package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectHighlight is the public mirror of a Project.
type ProjectHighlight struct {
	Base
	TenantID  uuid.UUID `json:"tenantId" db:"tenant_id" gorm:"type:uuid;not null;index"`
	ProjectID uuid.UUID `json:"projectId" db:"project_id" gorm:"type:uuid;not null;uniqueIndex"`
	Title     string    `json:"title" db:"title" gorm:"type:text;not null"`
	Summary   string    `json:"summary" db:"summary" gorm:"type:text;not null;default:''"`
	ImageURL  *string   `json:"imageUrl,omitempty" db:"image_url" gorm:"type:text"`
	Featured  bool      `json:"featured" db:"featured" gorm:"not null;default:false"`
	SyncedAt  time.Time `json:"syncedAt" db:"synced_at" gorm:"not null"`
}
