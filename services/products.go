package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

// ProductService validates catalog writes. HasVariants is owned by
// VariantService and never taken from client input.
type ProductService struct {
	products ProductStore
	variants VariantStore
	logger   zerolog.Logger
}

func NewProductService(products ProductStore, variants VariantStore) *ProductService {
	return &ProductService{
		products: products,
		variants: variants,
		logger:   log.With().Str("service", "products").Logger(),
	}
}

func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, product *models.Product) (*models.Product, error) {
	product.ID = uuid.Nil
	product.TenantID = tenantID
	product.HasVariants = false
	product.Variants = nil

	if err := s.prepare(ctx, tenantID, product, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.products.Add(ctx, product); err != nil {
		return nil, s.mapWriteError(product, err)
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, tenantID, id uuid.UUID, product *models.Product) (*models.Product, error) {
	existing, err := s.products.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	product.ID = existing.ID
	product.TenantID = tenantID
	product.CreatedAt = existing.CreatedAt
	product.HasVariants = existing.HasVariants
	product.Variants = nil

	if err := s.prepare(ctx, tenantID, product, existing.ID); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, product); err != nil {
		return nil, s.mapWriteError(product, err)
	}
	return product, nil
}

// Delete removes the product; its variants go with it through the cascade.
func (s *ProductService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.products.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.Info().Str("productId", id.String()).Msg("Product deleted with its variants")
	return nil
}

func (s *ProductService) prepare(ctx context.Context, tenantID uuid.UUID, product *models.Product, selfID uuid.UUID) error {
	product.Title = strings.TrimSpace(product.Title)
	if product.Title == "" {
		return errs.NewMissingRequiredFieldError("title")
	}
	product.Slug = Slugify(product.Slug)
	if product.Slug == "" {
		product.Slug = Slugify(product.Title)
	}
	if product.Status == "" {
		product.Status = models.ProductStatusDraft
	}
	switch product.Status {
	case models.ProductStatusDraft, models.ProductStatusActive, models.ProductStatusArchived:
	default:
		return errs.NewInvalidFieldError("status", "must be draft, active or archived")
	}
	if product.Price.Valid && product.Price.Decimal.IsNegative() {
		return errs.NewInvalidFieldError("price", "must not be negative")
	}

	seen := make(map[string]struct{}, len(product.VariantOptionTypes))
	for i, t := range product.VariantOptionTypes {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return errs.NewMissingRequiredFieldError("variantOptionTypes.name")
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return errs.NewInvalidFieldError("variantOptionTypes", "duplicate option type "+name)
		}
		seen[key] = struct{}{}
		product.VariantOptionTypes[i].Name = name
	}

	if product.SKU != nil {
		sku := strings.TrimSpace(*product.SKU)
		if sku == "" {
			product.SKU = nil
			return nil
		}
		product.SKU = &sku

		taken, err := s.products.SKUInUse(ctx, tenantID, sku, selfID)
		if err != nil {
			return err
		}
		if taken {
			return errs.NewSKUConflictError(sku, "product")
		}
		taken, err = s.variants.SKUInUse(ctx, tenantID, sku, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return errs.NewSKUConflictError(sku, "variant")
		}
	}
	return nil
}

// mapWriteError turns a unique violation on the SKU index into a SKU conflict.
func (s *ProductService) mapWriteError(product *models.Product, err error) error {
	var apiErr *errs.ApiErr
	if product.SKU != nil && errs.IsAlreadyExists(err) && errors.As(err, &apiErr) && strings.Contains(apiErr.Details, "sku") {
		return errs.NewSKUConflictError(*product.SKU, "product").WithCause(err)
	}
	return err
}
