package models

import "github.com/google/uuid"

// Customer is deduplicated per tenant by lower-cased email.
type Customer struct {
	Base
	TenantID   uuid.UUID `json:"tenantId" db:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_customers_tenant_email,priority:1"`
	Email      string    `json:"email" db:"email" gorm:"type:text;not null;uniqueIndex:idx_customers_tenant_email,priority:2"`
	Name       string    `json:"name" db:"name" gorm:"type:text;not null;default:''"`
	Phone      *string   `json:"phone,omitempty" db:"phone" gorm:"type:text"`
	OrderCount int       `json:"orderCount" db:"order_count" gorm:"not null;default:0"`
}
