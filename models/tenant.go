package models

import (
	"gorm.io/datatypes"
)

// Tenant is a business account. Most other collections are scoped by TenantID.
type Tenant struct {
	Base
	Name              string                          `json:"name" db:"name" gorm:"type:text;not null"`
	Slug              string                          `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex"`
	Domain            *string                         `json:"domain,omitempty" db:"domain" gorm:"type:text;uniqueIndex"`
	IsActive          bool                            `json:"isActive" db:"is_active" gorm:"not null;default:true"`
	Theme             datatypes.JSONType[ThemeConfig] `json:"theme" db:"theme" gorm:"type:jsonb"`
	DeployHookURL     *string                         `json:"deployHookUrl,omitempty" db:"deploy_hook_url" gorm:"type:text"`
	NotificationEmail *string                         `json:"notificationEmail,omitempty" db:"notification_email" gorm:"type:text"`
	NotificationPhone *string                         `json:"notificationPhone,omitempty" db:"notification_phone" gorm:"type:text"`
}

// ThemeConfig is the colour and typography configuration of a tenant site.
// Nil fields fall back to defaults when the stylesheet is generated.
type ThemeConfig struct {
	Colors     ThemeColors     `json:"colors" yaml:"colors"`
	Typography ThemeTypography `json:"typography" yaml:"typography"`
	Radius     *string         `json:"radius,omitempty" yaml:"radius,omitempty"`
}

type ThemeColors struct {
	Primary    *string `json:"primary,omitempty" yaml:"primary,omitempty"`
	Secondary  *string `json:"secondary,omitempty" yaml:"secondary,omitempty"`
	Accent     *string `json:"accent,omitempty" yaml:"accent,omitempty"`
	Background *string `json:"background,omitempty" yaml:"background,omitempty"`
	Surface    *string `json:"surface,omitempty" yaml:"surface,omitempty"`
	Text       *string `json:"text,omitempty" yaml:"text,omitempty"`
	Muted      *string `json:"muted,omitempty" yaml:"muted,omitempty"`
}

type ThemeTypography struct {
	HeadingFont  *string `json:"headingFont,omitempty" yaml:"headingFont,omitempty"`
	BodyFont     *string `json:"bodyFont,omitempty" yaml:"bodyFont,omitempty"`
	BaseFontSize *string `json:"baseFontSize,omitempty" yaml:"baseFontSize,omitempty"`
}

// Merge returns a copy of c where every non-nil field of other overrides c.
func (c ThemeConfig) Merge(other ThemeConfig) ThemeConfig {
	pick := func(a, b *string) *string {
		if b != nil {
			return b
		}
		return a
	}
	return ThemeConfig{
		Colors: ThemeColors{
			Primary:    pick(c.Colors.Primary, other.Colors.Primary),
			Secondary:  pick(c.Colors.Secondary, other.Colors.Secondary),
			Accent:     pick(c.Colors.Accent, other.Colors.Accent),
			Background: pick(c.Colors.Background, other.Colors.Background),
			Surface:    pick(c.Colors.Surface, other.Colors.Surface),
			Text:       pick(c.Colors.Text, other.Colors.Text),
			Muted:      pick(c.Colors.Muted, other.Colors.Muted),
		},
		Typography: ThemeTypography{
			HeadingFont:  pick(c.Typography.HeadingFont, other.Typography.HeadingFont),
			BodyFont:     pick(c.Typography.BodyFont, other.Typography.BodyFont),
			BaseFontSize: pick(c.Typography.BaseFontSize, other.Typography.BaseFontSize),
		},
		Radius: pick(c.Radius, other.Radius),
	}
}
