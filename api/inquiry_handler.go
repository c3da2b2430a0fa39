package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

type inquiryRepository interface {
	FindAll(ctx context.Context, tenantID uuid.UUID, status string) ([]*models.Inquiry, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
}

type inquiryHandler struct {
	responder Responder
	logger    zerolog.Logger
	inquiries inquiryRepository
}

func newInquiryHandler(inquiries inquiryRepository) inquiryHandler {
	logger := log.With().Str("handlerName", "inquiryHandler").Logger()

	return inquiryHandler{
		responder: NewResponder(logger),
		logger:    logger,
		inquiries: inquiries,
	}
}

// getAllInquiries retrieves contact form submissions
// @Summary Get all inquiries
// @Tags Inquiries
// @Produce json
// @Param status query string false "Filter by status" Enums(new, read, archived)
// @Success 200 {object} CollectionResponse[models.Inquiry]
// @Router /admin/inquiries [get]
func (h inquiryHandler) getAllInquiries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		inquiries, err := h.inquiries.FindAll(r.Context(), tenant.ID, r.URL.Query().Get("status"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find inquiries", "inquiries", err))
			return
		}
		h.responder.WriteJSON(w, newCollection(inquiries))
	}
}

// updateInquiryStatus marks an inquiry read or archived
// @Summary Update inquiry status
// @Tags Inquiries
// @Accept json
// @Param inquiryID path string true "Inquiry ID" format(uuid)
// @Param status body StatusUpdateRequest true "New status"
// @Success 204
// @Router /admin/inquiry/{inquiryID}/status [put]
func (h inquiryHandler) updateInquiryStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		inquiryID, err := uuidParam(r, "inquiryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req StatusUpdateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		switch req.Status {
		case models.InquiryStatusNew, models.InquiryStatusRead, models.InquiryStatusArchived:
		default:
			h.responder.WriteError(w, errs.NewInvalidFieldError("status", "must be new, read or archived"))
			return
		}

		if err := h.inquiries.UpdateStatus(r.Context(), tenant.ID, inquiryID, req.Status); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "inquiry", err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
