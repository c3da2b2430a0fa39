package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
	"github.com/rpupo63/tenant-site-backend/services"
)

type publishedPageFinder interface {
	FindPublishedBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Page, error)
}

type catalogReader interface {
	FindAll(ctx context.Context, tenantID uuid.UUID, status string) ([]*models.Product, error)
	FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Product, error)
}

type highlightLister interface {
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]*models.ProjectHighlight, error)
}

type orderCreator interface {
	Create(ctx context.Context, tenant *models.Tenant, order *models.Order) (*models.Order, error)
}

type inquirySubmitter interface {
	SubmitInquiry(ctx context.Context, tenant *models.Tenant, inquiry *models.Inquiry) (*models.Inquiry, error)
}

// siteHandler serves the public endpoints of a tenant site.
type siteHandler struct {
	responder  Responder
	logger     zerolog.Logger
	pages      publishedPageFinder
	products   catalogReader
	highlights highlightLister
	orders     orderCreator
	forms      inquirySubmitter
}

func newSiteHandler(pages publishedPageFinder, products catalogReader, highlights highlightLister, orders orderCreator, forms inquirySubmitter) siteHandler {
	logger := log.With().Str("handlerName", "siteHandler").Logger()

	return siteHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		pages:      pages,
		products:   products,
		highlights: highlights,
		orders:     orders,
		forms:      forms,
	}
}

// OrderFormRequest is the public order form payload.
type OrderFormRequest struct {
	ProductID    uuid.UUID            `json:"productId"`
	VariantID    *uuid.UUID           `json:"variantId,omitempty"`
	Quantity     int                  `json:"quantity"`
	Notes        string               `json:"notes"`
	CustomerData *models.CustomerData `json:"customerData"`
}

// OrderFormResponse confirms an order to the visitor.
type OrderFormResponse struct {
	ID          uuid.UUID           `json:"id"`
	OrderNumber int                 `json:"orderNumber"`
	Reference   string              `json:"reference"`
	Total       decimal.NullDecimal `json:"total"`
	Status      string              `json:"status"`
}

// InquiryFormRequest is the public contact form payload.
type InquiryFormRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone,omitempty"`
	Message    string  `json:"message"`
	SourcePage string  `json:"sourcePage"`
}

// getThemeCSS serves the tenant stylesheet
// @Summary Tenant theme stylesheet
// @Tags Site
// @Produce text/css
// @Success 200 {string} string "CSS custom properties"
// @Router /site/theme.css [get]
func (h siteHandler) getThemeCSS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		cfg := tenant.Theme.Data()
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.Write([]byte(services.GenerateThemeCSS(&cfg)))
	}
}

// getPage retrieves a published page by slug
// @Summary Get published page
// @Tags Site
// @Produce json
// @Param slug path string true "Page slug"
// @Success 200 {object} models.Page
// @Failure 404 {object} ErrorResponse "Not Found - Page not found or unpublished"
// @Router /site/pages/{slug} [get]
func (h siteHandler) getPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		page, err := h.pages.FindPublishedBySlug(r.Context(), tenant.ID, chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find page", "page", err))
			return
		}
		h.responder.WriteJSON(w, page)
	}
}

// getProducts lists active products
// @Summary List active products
// @Tags Site
// @Produce json
// @Success 200 {object} CollectionResponse[models.Product]
// @Router /site/products [get]
func (h siteHandler) getProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		products, err := h.products.FindAll(r.Context(), tenant.ID, models.ProductStatusActive)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find products", "products", err))
			return
		}
		h.responder.WriteJSON(w, newCollection(products))
	}
}

// getProduct retrieves an active product with its active variants
// @Summary Get active product
// @Tags Site
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {object} models.Product
// @Failure 404 {object} ErrorResponse "Not Found - Product not found or inactive"
// @Router /site/products/{slug} [get]
func (h siteHandler) getProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		product, err := h.products.FindBySlug(r.Context(), tenant.ID, chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find product", "product", err))
			return
		}
		if product.Status != models.ProductStatusActive {
			h.responder.WriteError(w, errs.NewNotFound("product"))
			return
		}
		h.responder.WriteJSON(w, product)
	}
}

// getHighlights lists project highlights
// @Summary List project highlights
// @Tags Site
// @Produce json
// @Success 200 {object} CollectionResponse[models.ProjectHighlight]
// @Router /site/highlights [get]
func (h siteHandler) getHighlights() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		highlights, err := h.highlights.FindAll(r.Context(), tenant.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find highlights", "highlights", err))
			return
		}
		h.responder.WriteJSON(w, newCollection(highlights))
	}
}

// submitInquiry stores a contact form submission
// @Summary Submit contact form
// @Tags Site
// @Accept json
// @Produce json
// @Param inquiry body InquiryFormRequest true "Inquiry"
// @Success 201 {object} models.Inquiry
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid inquiry"
// @Router /site/forms/inquiry [post]
func (h siteHandler) submitInquiry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req InquiryFormRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		inquiry, err := h.forms.SubmitInquiry(r.Context(), tenant, &models.Inquiry{
			Name:       req.Name,
			Email:      req.Email,
			Phone:      req.Phone,
			Message:    req.Message,
			SourcePage: strings.TrimSpace(req.SourcePage),
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "inquiry", err))
			return
		}
		h.responder.WriteCreated(w, inquiry)
	}
}

// submitOrder creates an order from the public order form
// @Summary Submit order form
// @Tags Site
// @Accept json
// @Produce json
// @Param order body OrderFormRequest true "Order"
// @Success 201 {object} OrderFormResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid order"
// @Router /site/forms/order [post]
func (h siteHandler) submitOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req OrderFormRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		order, err := h.orders.Create(r.Context(), tenant, &models.Order{
			ProductID:    req.ProductID,
			VariantID:    req.VariantID,
			Quantity:     req.Quantity,
			Notes:        strings.TrimSpace(req.Notes),
			CustomerData: req.CustomerData,
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "order", err))
			return
		}

		h.responder.WriteCreated(w, OrderFormResponse{
			ID:          order.ID,
			OrderNumber: order.OrderNumber,
			Reference:   order.Reference(),
			Total:       order.Total,
			Status:      order.Status,
		})
	}
}
