package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Block types a page can be composed of.
const (
	BlockHero         = "hero"
	BlockServices     = "services"
	BlockTestimonials = "testimonials"
	BlockGallery      = "gallery"
	BlockProducts     = "products"
	BlockContact      = "contact"
)

// Page is an ordered list of content blocks published under a slug.
type Page struct {
	Base
	TenantID  uuid.UUID                  `json:"tenantId" db:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_pages_tenant_slug,priority:1"`
	Slug      string                     `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex:idx_pages_tenant_slug,priority:2"`
	Title     string                     `json:"title" db:"title" gorm:"type:text;not null"`
	Blocks    datatypes.JSONSlice[Block] `json:"blocks" db:"blocks" gorm:"type:jsonb"`
	Published bool                       `json:"published" db:"published" gorm:"not null;default:false"`
}

// Block is one admin-configured content unit. Data is block-type specific.
type Block struct {
	Type string            `json:"type"`
	Data datatypes.JSONMap `json:"data,omitempty"`
}

// ValidBlockType reports whether t is a known block type.
func ValidBlockType(t string) bool {
	switch t {
	case BlockHero, BlockServices, BlockTestimonials, BlockGallery, BlockProducts, BlockContact:
		return true
	}
	return false
}
