package models

import "github.com/google/uuid"

const (
	InquiryStatusNew      = "new"
	InquiryStatusRead     = "read"
	InquiryStatusArchived = "archived"
)

// Inquiry is a contact form submission.
type Inquiry struct {
	Base
	TenantID   uuid.UUID `json:"tenantId" db:"tenant_id" gorm:"type:uuid;not null;index"`
	Name       string    `json:"name" db:"name" gorm:"type:text;not null"`
	Email      string    `json:"email" db:"email" gorm:"type:text;not null"`
	Phone      *string   `json:"phone,omitempty" db:"phone" gorm:"type:text"`
	Message    string    `json:"message" db:"message" gorm:"type:text;not null"`
	SourcePage string    `json:"sourcePage" db:"source_page" gorm:"type:text;not null;default:''"`
	Status     string    `json:"status" db:"status" gorm:"type:text;not null;default:'new'"`
}
