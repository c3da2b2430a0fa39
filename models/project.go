package models

import "github.com/google/uuid"

const (
	ProjectSourceManual   = "manual"
	ProjectSourceFacebook = "facebook"
)

// Project is a portfolio entry. Non-Facebook projects mirror into ProjectHighlight.
type Project struct {
	Base
	TenantID    uuid.UUID `json:"tenantId" db:"tenant_id" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" db:"title" gorm:"type:text;not null"`
	Description string    `json:"description" db:"description" gorm:"type:text;not null;default:''"`
	ImageURL    *string   `json:"imageUrl,omitempty" db:"image_url" gorm:"type:text"`
	Link        *string   `json:"link,omitempty" db:"link" gorm:"type:text"`
	Source      string    `json:"source" db:"source" gorm:"type:text;not null;default:'manual'"`
	Featured    bool      `json:"featured" db:"featured" gorm:"not null;default:false"`
}

// Mirrored reports whether the project is copied into the highlights collection.
func (p *Project) Mirrored() bool {
	return p.Source != ProjectSourceFacebook
}
