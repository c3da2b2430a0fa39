package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/models"
)

type variantLister interface {
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*models.ProductVariant, error)
}

type variantWriter interface {
	Create(ctx context.Context, tenantID uuid.UUID, variant *models.ProductVariant) (*models.ProductVariant, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, variant *models.ProductVariant) (*models.ProductVariant, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type variantHandler struct {
	responder Responder
	logger    zerolog.Logger
	variants  variantLister
	service   variantWriter
}

func newVariantHandler(variants variantLister, service variantWriter) variantHandler {
	logger := log.With().Str("handlerName", "variantHandler").Logger()

	return variantHandler{
		responder: NewResponder(logger),
		logger:    logger,
		variants:  variants,
		service:   service,
	}
}

// getProductVariants lists the variants of a product
// @Summary List variants of a product
// @Tags Variants
// @Produce json
// @Param productID path string true "Product ID" format(uuid)
// @Success 200 {object} CollectionResponse[models.ProductVariant]
// @Router /admin/product/{productID}/variants [get]
func (h variantHandler) getProductVariants() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		productID, err := uuidParam(r, "productID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		variants, err := h.variants.FindByProduct(r.Context(), tenant.ID, productID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find variants", "variants", err))
			return
		}
		h.responder.WriteJSON(w, newCollection(variants))
	}
}

// createVariant adds a variant to a product
// @Summary Create variant
// @Description Options must be declared on the product; the SKU must be unique across variants and products
// @Tags Variants
// @Accept json
// @Produce json
// @Param productID path string true "Product ID" format(uuid)
// @Param variant body models.ProductVariant true "Variant data"
// @Success 201 {object} models.ProductVariant
// @Failure 400 {object} ErrorResponse "Bad Request - Unknown option"
// @Failure 409 {object} ErrorResponse "Conflict - SKU in use"
// @Router /admin/product/{productID}/variant [post]
func (h variantHandler) createVariant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		productID, err := uuidParam(r, "productID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		variant := models.ProductVariant{IsActive: true}
		if err := decodeJSON(w, r, &variant); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		variant.ProductID = productID

		created, err := h.service.Create(r.Context(), tenant.ID, &variant)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "variant", err))
			return
		}
		h.responder.WriteCreated(w, created)
	}
}

// updateVariant replaces a variant, optionally moving it to another product
// @Summary Update variant
// @Tags Variants
// @Accept json
// @Produce json
// @Param variantID path string true "Variant ID" format(uuid)
// @Param variant body models.ProductVariant true "Variant data"
// @Success 200 {object} models.ProductVariant
// @Failure 409 {object} ErrorResponse "Conflict - SKU in use"
// @Router /admin/variant/{variantID} [put]
func (h variantHandler) updateVariant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		variantID, err := uuidParam(r, "variantID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		variant := models.ProductVariant{IsActive: true}
		if err := decodeJSON(w, r, &variant); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.service.Update(r.Context(), tenant.ID, variantID, &variant)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "variant", err))
			return
		}
		h.responder.WriteJSON(w, updated)
	}
}

// deleteVariant removes a variant
// @Summary Delete variant
// @Tags Variants
// @Param variantID path string true "Variant ID" format(uuid)
// @Success 204
// @Router /admin/variant/{variantID} [delete]
func (h variantHandler) deleteVariant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		variantID, err := uuidParam(r, "variantID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.service.Delete(r.Context(), tenant.ID, variantID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "variant", err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
