package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	ProductStatusDraft    = "draft"
	ProductStatusActive   = "active"
	ProductStatusArchived = "archived"
)

// Product is a catalog entry. HasVariants mirrors whether any ProductVariant
// references it and is maintained by the variant lifecycle, never by clients.
type Product struct {
	Base
	TenantID           uuid.UUID                              `json:"tenantId" db:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_products_tenant_slug,priority:1;index:idx_products_tenant_sku,priority:1"`
	Title              string                                 `json:"title" db:"title" gorm:"type:text;not null"`
	Slug               string                                 `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex:idx_products_tenant_slug,priority:2"`
	SKU                *string                                `json:"sku,omitempty" db:"sku" gorm:"type:text;index:idx_products_tenant_sku,priority:2"`
	Description        string                                 `json:"description" db:"description" gorm:"type:text;not null;default:''"`
	Price              decimal.NullDecimal                    `json:"price" db:"price" gorm:"type:numeric(12,2)"`
	Images             pq.StringArray                         `json:"images" db:"images" gorm:"type:text[]"`
	Status             string                                 `json:"status" db:"status" gorm:"type:text;not null;default:'draft'"`
	HasVariants        bool                                   `json:"hasVariants" db:"has_variants" gorm:"not null;default:false"`
	VariantOptionTypes datatypes.JSONSlice[VariantOptionType] `json:"variantOptionTypes" db:"variant_option_types" gorm:"type:jsonb"`

	Variants []ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID;references:ID;constraint:OnDelete:CASCADE"`
}

// VariantOptionType declares an axis a product varies on, e.g. "Size" with values S, M, L.
// An empty Values list accepts any value.
type VariantOptionType struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
}

// OptionType finds a declared option type by case-insensitive name.
func (p *Product) OptionType(name string) (VariantOptionType, bool) {
	for _, t := range p.VariantOptionTypes {
		if strings.EqualFold(strings.TrimSpace(t.Name), strings.TrimSpace(name)) {
			return t, true
		}
	}
	return VariantOptionType{}, false
}

// OptionTypeNames lists the declared option names in declaration order.
func (p *Product) OptionTypeNames() []string {
	names := make([]string, 0, len(p.VariantOptionTypes))
	for _, t := range p.VariantOptionTypes {
		names = append(names, t.Name)
	}
	return names
}
