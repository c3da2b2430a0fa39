package models

import "github.com/google/uuid"

// Media is an uploaded object stored in S3-compatible storage.
type Media struct {
	Base
	TenantID    uuid.UUID `json:"tenantId" db:"tenant_id" gorm:"type:uuid;not null;index"`
	ObjectKey   string    `json:"objectKey" db:"object_key" gorm:"type:text;not null;uniqueIndex"`
	ContentType string    `json:"contentType" db:"content_type" gorm:"type:text;not null"`
	Size        int64     `json:"size" db:"size" gorm:"not null"`
	Alt         string    `json:"alt" db:"alt" gorm:"type:text;not null;default:''"`
	URL         string    `json:"url" db:"url" gorm:"type:text;not null"`
}
