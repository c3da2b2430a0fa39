package models

import "github.com/google/uuid"

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User is an admin account of one tenant.
type User struct {
	Base
	TenantID     uuid.UUID `json:"tenantId" db:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_users_tenant_email,priority:1"`
	Email        string    `json:"email" db:"email" gorm:"type:text;not null;uniqueIndex:idx_users_tenant_email,priority:2"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"type:text;not null"`
	Name         string    `json:"name" db:"name" gorm:"type:text;not null;default:''"`
	Role         string    `json:"role" db:"role" gorm:"type:text;not null;default:'editor'"`
}
