package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/models"
)

type pageReader interface {
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]*models.Page, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Page, error)
}

type pageWriter interface {
	Create(ctx context.Context, tenantID uuid.UUID, page *models.Page) (*models.Page, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, page *models.Page) (*models.Page, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type pageHandler struct {
	responder Responder
	logger    zerolog.Logger
	pages     pageReader
	service   pageWriter
}

func newPageHandler(pages pageReader, service pageWriter) pageHandler {
	logger := log.With().Str("handlerName", "pageHandler").Logger()

	return pageHandler{
		responder: NewResponder(logger),
		logger:    logger,
		pages:     pages,
		service:   service,
	}
}

// getAllPages retrieves all pages of the tenant
// @Summary Get all pages
// @Description Retrieves all pages, published or not
// @Tags Pages
// @Produce json
// @Success 200 {object} CollectionResponse[models.Page] "List of pages"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching pages"
// @Router /admin/pages [get]
func (h pageHandler) getAllPages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		pages, err := h.pages.FindAll(r.Context(), tenant.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find pages", "pages", err))
			return
		}
		h.responder.WriteJSON(w, newCollection(pages))
	}
}

// getPage retrieves a specific page by ID
// @Summary Get page
// @Tags Pages
// @Produce json
// @Param pageID path string true "Page ID" format(uuid)
// @Success 200 {object} models.Page "Page details"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid pageID"
// @Failure 404 {object} ErrorResponse "Not Found - Page not found"
// @Router /admin/page/{pageID} [get]
func (h pageHandler) getPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		pageID, err := uuidParam(r, "pageID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		page, err := h.pages.FindByID(r.Context(), tenant.ID, pageID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find page", "page", err))
			return
		}
		h.responder.WriteJSON(w, page)
	}
}

// createPage creates a page from an ordered list of blocks
// @Summary Create page
// @Description Block types must be one of hero, services, testimonials, gallery, products or contact.
// @Tags Pages
// @Accept json
// @Produce json
// @Param page body models.Page true "Page data"
// @Success 201 {object} models.Page "Created page"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid page data"
// @Failure 409 {object} ErrorResponse "Conflict - Slug already in use"
// @Router /admin/page [post]
func (h pageHandler) createPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var page models.Page
		if err := decodeJSON(w, r, &page); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		created, err := h.service.Create(r.Context(), tenant.ID, &page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "page", err))
			return
		}
		h.responder.WriteCreated(w, created)
	}
}

// updatePage updates an existing page
// @Summary Update page
// @Tags Pages
// @Accept json
// @Produce json
// @Param pageID path string true "Page ID" format(uuid)
// @Param page body models.Page true "Updated page data"
// @Success 200 {object} models.Page "Updated page"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid page data"
// @Failure 404 {object} ErrorResponse "Not Found - Page not found"
// @Router /admin/page/{pageID} [put]
func (h pageHandler) updatePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		pageID, err := uuidParam(r, "pageID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var page models.Page
		if err := decodeJSON(w, r, &page); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.service.Update(r.Context(), tenant.ID, pageID, &page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "page", err))
			return
		}
		h.responder.WriteJSON(w, updated)
	}
}

// deletePage deletes a page
// @Summary Delete page
// @Tags Pages
// @Param pageID path string true "Page ID" format(uuid)
// @Success 204
// @Failure 404 {object} ErrorResponse "Not Found - Page not found"
// @Router /admin/page/{pageID} [delete]
func (h pageHandler) deletePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		pageID, err := uuidParam(r, "pageID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.service.Delete(r.Context(), tenant.ID, pageID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "page", err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
