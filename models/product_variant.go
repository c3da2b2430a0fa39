package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ProductVariant is a SKU-bound configuration of a product. Name is generated
// from the product title and the option values.
type ProductVariant struct {
	Base
	TenantID  uuid.UUID                          `json:"tenantId" db:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_variants_tenant_sku,priority:1"`
	ProductID uuid.UUID                          `json:"productId" db:"product_id" gorm:"type:uuid;not null;index"`
	Name      string                             `json:"name" db:"name" gorm:"type:text;not null"`
	SKU       string                             `json:"sku" db:"sku" gorm:"type:text;not null;uniqueIndex:idx_variants_tenant_sku,priority:2"`
	Options   datatypes.JSONSlice[VariantOption] `json:"options" db:"options" gorm:"type:jsonb"`
	Price     decimal.NullDecimal                `json:"price" db:"price" gorm:"type:numeric(12,2)"`
	Stock     int                                `json:"stock" db:"stock" gorm:"not null;default:0"`
	IsActive  bool                               `json:"isActive" db:"is_active" gorm:"not null;default:true"`
}

// VariantOption is one selected value, e.g. {"name": "Size", "value": "M"}.
type VariantOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
