package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

// VariantService enforces the variant rules: generated names, SKU uniqueness
// across variants and products, declared options only, and the parent's
// HasVariants flag.
type VariantService struct {
	products ProductStore
	variants VariantStore
	logger   zerolog.Logger
}

func NewVariantService(products ProductStore, variants VariantStore) *VariantService {
	return &VariantService{
		products: products,
		variants: variants,
		logger:   log.With().Str("service", "variants").Logger(),
	}
}

// VariantName renders "<title> - v1 / v2" over the option values in order.
func VariantName(productTitle string, options []models.VariantOption) string {
	values := make([]string, 0, len(options))
	for _, o := range options {
		if v := strings.TrimSpace(o.Value); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return productTitle
	}
	return productTitle + " - " + strings.Join(values, " / ")
}

func (s *VariantService) Create(ctx context.Context, tenantID uuid.UUID, variant *models.ProductVariant) (*models.ProductVariant, error) {
	variant.ID = uuid.Nil
	variant.TenantID = tenantID

	product, err := s.prepare(ctx, tenantID, variant, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if err := s.variants.Add(ctx, variant); err != nil {
		return nil, s.mapWriteError(variant.SKU, err)
	}
	if err := s.syncHasVariants(ctx, tenantID, product.ID); err != nil {
		return nil, err
	}
	return variant, nil
}

// Update replaces the mutable fields of the variant. Moving it to another
// product recomputes HasVariants on both products.
func (s *VariantService) Update(ctx context.Context, tenantID, id uuid.UUID, variant *models.ProductVariant) (*models.ProductVariant, error) {
	existing, err := s.variants.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	previousProductID := existing.ProductID

	variant.ID = existing.ID
	variant.TenantID = tenantID
	variant.CreatedAt = existing.CreatedAt
	if variant.ProductID == uuid.Nil {
		variant.ProductID = existing.ProductID
	}

	product, err := s.prepare(ctx, tenantID, variant, existing.ID)
	if err != nil {
		return nil, err
	}
	if err := s.variants.Update(ctx, variant); err != nil {
		return nil, s.mapWriteError(variant.SKU, err)
	}

	if err := s.syncHasVariants(ctx, tenantID, product.ID); err != nil {
		return nil, err
	}
	if previousProductID != product.ID {
		if err := s.syncHasVariants(ctx, tenantID, previousProductID); err != nil {
			return nil, err
		}
	}
	return variant, nil
}

func (s *VariantService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	existing, err := s.variants.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.variants.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	return s.syncHasVariants(ctx, tenantID, existing.ProductID)
}

// prepare loads the parent product, normalizes and validates the variant in
// place and fills in its generated name.
func (s *VariantService) prepare(ctx context.Context, tenantID uuid.UUID, variant *models.ProductVariant, selfID uuid.UUID) (*models.Product, error) {
	if variant.ProductID == uuid.Nil {
		return nil, errs.NewMissingRequiredFieldError("product")
	}
	product, err := s.products.FindByID(ctx, tenantID, variant.ProductID)
	if err != nil {
		return nil, err
	}

	variant.SKU = strings.TrimSpace(variant.SKU)
	if variant.SKU == "" {
		return nil, errs.NewMissingRequiredFieldError("sku")
	}
	if variant.Stock < 0 {
		return nil, errs.NewInvalidFieldError("stock", "must not be negative")
	}

	options, err := ValidateVariantOptions(product, variant.Options)
	if err != nil {
		return nil, err
	}
	variant.Options = options

	if err := s.checkSKU(ctx, tenantID, variant.SKU, selfID); err != nil {
		return nil, err
	}

	variant.Name = VariantName(product.Title, variant.Options)
	return product, nil
}

// ValidateVariantOptions checks every option against the product's declared
// option types and returns the options with canonical names and trimmed values.
func ValidateVariantOptions(product *models.Product, options []models.VariantOption) ([]models.VariantOption, error) {
	seen := make(map[string]struct{}, len(options))
	normalized := make([]models.VariantOption, 0, len(options))

	for _, opt := range options {
		name := strings.TrimSpace(opt.Name)
		if name == "" {
			return nil, errs.NewMissingRequiredFieldError("options.name")
		}
		declared, ok := product.OptionType(name)
		if !ok {
			return nil, errs.NewUnknownVariantOptionError(name, product.OptionTypeNames())
		}

		key := strings.ToLower(strings.TrimSpace(declared.Name))
		if _, dup := seen[key]; dup {
			return nil, errs.NewInvalidFieldError("options", "duplicate option "+declared.Name)
		}
		seen[key] = struct{}{}

		value := strings.TrimSpace(opt.Value)
		if value == "" {
			return nil, errs.NewMissingRequiredFieldError("options." + declared.Name)
		}
		if len(declared.Values) > 0 {
			matched := ""
			for _, allowed := range declared.Values {
				if strings.EqualFold(strings.TrimSpace(allowed), value) {
					matched = allowed
					break
				}
			}
			if matched == "" {
				return nil, errs.NewInvalidVariantOptionValueError(declared.Name, value, declared.Values)
			}
			value = matched
		}

		normalized = append(normalized, models.VariantOption{Name: declared.Name, Value: value})
	}
	return normalized, nil
}

// checkSKU rejects a SKU held by another variant or by any product of the tenant.
func (s *VariantService) checkSKU(ctx context.Context, tenantID uuid.UUID, sku string, selfID uuid.UUID) error {
	taken, err := s.variants.SKUInUse(ctx, tenantID, sku, selfID)
	if err != nil {
		return err
	}
	if taken {
		return errs.NewSKUConflictError(sku, "variant")
	}

	taken, err = s.products.SKUInUse(ctx, tenantID, sku, uuid.Nil)
	if err != nil {
		return err
	}
	if taken {
		return errs.NewSKUConflictError(sku, "product")
	}
	return nil
}

func (s *VariantService) mapWriteError(sku string, err error) error {
	if errs.IsAlreadyExists(err) {
		return errs.NewSKUConflictError(sku, "variant").WithCause(err)
	}
	return err
}

// syncHasVariants sets the product's HasVariants from the variants referencing it.
func (s *VariantService) syncHasVariants(ctx context.Context, tenantID, productID uuid.UUID) error {
	count, err := s.variants.CountByProduct(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	if err := s.products.SetHasVariants(ctx, tenantID, productID, count > 0); err != nil {
		if errs.IsNotFound(err) {
			s.logger.Warn().Str("productId", productID.String()).Msg("Parent product gone, skipping hasVariants sync")
			return nil
		}
		return err
	}
	s.logger.Debug().Str("productId", productID.String()).Int64("variants", count).Msg("Synced hasVariants")
	return nil
}
