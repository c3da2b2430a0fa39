package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/models"
)

type productReader interface {
	FindAll(ctx context.Context, tenantID uuid.UUID, status string) ([]*models.Product, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
}

type productWriter interface {
	Create(ctx context.Context, tenantID uuid.UUID, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type productHandler struct {
	responder Responder
	logger    zerolog.Logger
	products  productReader
	service   productWriter
}

func newProductHandler(products productReader, service productWriter) productHandler {
	logger := log.With().Str("handlerName", "productHandler").Logger()

	return productHandler{
		responder: NewResponder(logger),
		logger:    logger,
		products:  products,
		service:   service,
	}
}

// getAllProducts retrieves the tenant's products
// @Summary Get all products
// @Tags Products
// @Produce json
// @Param status query string false "Filter by status" Enums(draft, active, archived)
// @Success 200 {object} CollectionResponse[models.Product]
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching products"
// @Router /admin/products [get]
func (h productHandler) getAllProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		products, err := h.products.FindAll(r.Context(), tenant.ID, r.URL.Query().Get("status"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find products", "products", err))
			return
		}
		h.responder.WriteJSON(w, newCollection(products))
	}
}

// getProduct retrieves a specific product by ID
// @Summary Get product
// @Tags Products
// @Produce json
// @Param productID path string true "Product ID" format(uuid)
// @Success 200 {object} models.Product
// @Failure 404 {object} ErrorResponse "Not Found - Product not found"
// @Router /admin/product/{productID} [get]
func (h productHandler) getProduct() http.HandlerFunc {
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

		product, err := h.products.FindByID(r.Context(), tenant.ID, productID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find product", "product", err))
			return
		}
		h.responder.WriteJSON(w, product)
	}
}

// createProduct creates a new product
// @Summary Create product
// @Description SKU must not collide with any product or variant SKU of the tenant
// @Tags Products
// @Accept json
// @Produce json
// @Param product body models.Product true "Product data"
// @Success 201 {object} models.Product
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid product data"
// @Failure 409 {object} ErrorResponse "Conflict - SKU or slug in use"
// @Router /admin/product [post]
func (h productHandler) createProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var product models.Product
		if err := decodeJSON(w, r, &product); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		created, err := h.service.Create(r.Context(), tenant.ID, &product)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "product", err))
			return
		}
		h.responder.WriteCreated(w, created)
	}
}

// updateProduct replaces a product
// @Summary Update product
// @Tags Products
// @Accept json
// @Produce json
// @Param productID path string true "Product ID" format(uuid)
// @Param product body models.Product true "Product data"
// @Success 200 {object} models.Product
// @Failure 409 {object} ErrorResponse "Conflict - SKU or slug in use"
// @Router /admin/product/{productID} [put]
func (h productHandler) updateProduct() http.HandlerFunc {
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

		var product models.Product
		if err := decodeJSON(w, r, &product); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.service.Update(r.Context(), tenant.ID, productID, &product)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "product", err))
			return
		}
		h.responder.WriteJSON(w, updated)
	}
}

// deleteProduct deletes a product and its variants
// @Summary Delete product
// @Tags Products
// @Param productID path string true "Product ID" format(uuid)
// @Success 204
// @Failure 404 {object} ErrorResponse "Not Found - Product not found"
// @Router /admin/product/{productID} [delete]
func (h productHandler) deleteProduct() http.HandlerFunc {
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

		if err := h.service.Delete(r.Context(), tenant.ID, productID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "product", err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
