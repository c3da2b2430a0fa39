package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"github.com/rpupo63/tenant-site-backend/models"
)

// SeedFile is the YAML fixture format loaded by the seed command.
type SeedFile struct {
	Tenants []SeedTenant `yaml:"tenants"`
}

type SeedTenant struct {
	Name              string             `yaml:"name"`
	Slug              string             `yaml:"slug"`
	Domain            string             `yaml:"domain"`
	NotificationEmail string             `yaml:"notificationEmail"`
	NotificationPhone string             `yaml:"notificationPhone"`
	DeployHookURL     string             `yaml:"deployHookUrl"`
	Theme             models.ThemeConfig `yaml:"theme"`
	Users             []SeedUser         `yaml:"users"`
	Products          []SeedProduct      `yaml:"products"`
	Pages             []SeedPage         `yaml:"pages"`
	Projects          []SeedProject      `yaml:"projects"`
}

type SeedUser struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Password string `yaml:"password"`
}

type SeedProduct struct {
	Title       string                     `yaml:"title"`
	Slug        string                     `yaml:"slug"`
	SKU         string                     `yaml:"sku"`
	Description string                     `yaml:"description"`
	Price       string                     `yaml:"price"`
	Status      string                     `yaml:"status"`
	OptionTypes []models.VariantOptionType `yaml:"optionTypes"`
	Variants    []SeedVariant              `yaml:"variants"`
}

type SeedVariant struct {
	SKU     string            `yaml:"sku"`
	Options map[string]string `yaml:"options"`
	Price   string            `yaml:"price"`
	Stock   int               `yaml:"stock"`
}

type SeedPage struct {
	Slug      string                   `yaml:"slug"`
	Title     string                   `yaml:"title"`
	Published bool                     `yaml:"published"`
	Blocks    []map[string]interface{} `yaml:"blocks"`
}

type SeedProject struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"imageUrl"`
	Source      string `yaml:"source"`
	Featured    bool   `yaml:"featured"`
}

// SeedTargets are the writers the seeder goes through. Products, variants and
// projects use their services so the same rules apply as for admin writes.
type SeedTargets struct {
	Tenants interface {
		Add(context.Context, *models.Tenant) error
	}
	Users interface {
		Add(context.Context, *models.User) error
	}
	Pages    *PageService
	Products *ProductService
	Variants *VariantService
	Projects *ProjectService
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(r io.Reader) (*SeedFile, error) {
	var f SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

// Seed writes every tenant of f with its users, catalog, pages and projects.
func Seed(ctx context.Context, f *SeedFile, t SeedTargets) error {
	for _, st := range f.Tenants {
		tenant := &models.Tenant{
			Name:     st.Name,
			Slug:     Slugify(firstNonEmpty(st.Slug, st.Name)),
			IsActive: true,
			Theme:    datatypes.NewJSONType(st.Theme),
		}
		tenant.Domain = optional(strings.ToLower(st.Domain))
		tenant.NotificationEmail = optional(st.NotificationEmail)
		tenant.NotificationPhone = optional(st.NotificationPhone)
		tenant.DeployHookURL = optional(st.DeployHookURL)
		if err := t.Tenants.Add(ctx, tenant); err != nil {
			return fmt.Errorf("seed tenant %s: %w", tenant.Slug, err)
		}
		logger := log.With().Str("tenant", tenant.Slug).Logger()

		for _, su := range st.Users {
			hash, err := HashPassword(su.Password)
			if err != nil {
				return err
			}
			user := &models.User{
				TenantID:     tenant.ID,
				Email:        normalizeEmail(su.Email),
				Name:         su.Name,
				Role:         firstNonEmpty(su.Role, models.RoleEditor),
				PasswordHash: hash,
			}
			if err := t.Users.Add(ctx, user); err != nil {
				return fmt.Errorf("seed user %s: %w", su.Email, err)
			}
		}

		for _, sp := range st.Products {
			if err := seedProduct(ctx, t, tenant.ID, sp); err != nil {
				return err
			}
		}

		for _, pg := range st.Pages {
			page := &models.Page{
				TenantID:  tenant.ID,
				Slug:      Slugify(firstNonEmpty(pg.Slug, pg.Title)),
				Title:     pg.Title,
				Published: pg.Published,
			}
			for _, raw := range pg.Blocks {
				blockType, _ := raw["type"].(string)
				data := datatypes.JSONMap{}
				for k, v := range raw {
					if k != "type" {
						data[k] = v
					}
				}
				page.Blocks = append(page.Blocks, models.Block{Type: blockType, Data: data})
			}
			if _, err := t.Pages.Create(ctx, tenant.ID, page); err != nil {
				return fmt.Errorf("seed page %s: %w", page.Slug, err)
			}
		}

		for _, sp := range st.Projects {
			project := &models.Project{
				Title:       sp.Title,
				Description: sp.Description,
				ImageURL:    optional(sp.ImageURL),
				Source:      sp.Source,
				Featured:    sp.Featured,
			}
			if _, err := t.Projects.Create(ctx, tenant.ID, project); err != nil {
				return fmt.Errorf("seed project %s: %w", sp.Title, err)
			}
		}

		logger.Info().
			Int("users", len(st.Users)).
			Int("products", len(st.Products)).
			Int("pages", len(st.Pages)).
			Int("projects", len(st.Projects)).
			Msg("Seeded tenant")
	}
	return nil
}

func seedProduct(ctx context.Context, t SeedTargets, tenantID uuid.UUID, sp SeedProduct) error {
	price, err := parseSeedPrice(sp.Price)
	if err != nil {
		return fmt.Errorf("seed product %s: %w", sp.Title, err)
	}
	product := &models.Product{
		Title:              sp.Title,
		Slug:               sp.Slug,
		SKU:                optional(sp.SKU),
		Description:        sp.Description,
		Price:              price,
		Status:             sp.Status,
		VariantOptionTypes: sp.OptionTypes,
	}
	product, err = t.Products.Create(ctx, tenantID, product)
	if err != nil {
		return fmt.Errorf("seed product %s: %w", sp.Title, err)
	}

	for _, sv := range sp.Variants {
		vPrice, err := parseSeedPrice(sv.Price)
		if err != nil {
			return fmt.Errorf("seed variant %s: %w", sv.SKU, err)
		}
		variant := &models.ProductVariant{
			ProductID: product.ID,
			SKU:       sv.SKU,
			Price:     vPrice,
			Stock:     sv.Stock,
			IsActive:  true,
		}
		// map order is random, so follow the product's declared option order
		for _, ot := range product.VariantOptionTypes {
			if v, ok := sv.Options[ot.Name]; ok {
				variant.Options = append(variant.Options, models.VariantOption{Name: ot.Name, Value: v})
			}
		}
		if len(variant.Options) != len(sv.Options) {
			return fmt.Errorf("seed variant %s: options %v not all declared on %s", sv.SKU, sv.Options, product.Title)
		}
		if _, err := t.Variants.Create(ctx, tenantID, variant); err != nil {
			return fmt.Errorf("seed variant %s: %w", sv.SKU, err)
		}
	}
	return nil
}

func parseSeedPrice(s string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return decimal.NewNullDecimal(d), nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
