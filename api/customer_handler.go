package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/models"
)

type customerReader interface {
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]*models.Customer, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
}

type customerHandler struct {
	responder Responder
	logger    zerolog.Logger
	customers customerReader
}

func newCustomerHandler(customers customerReader) customerHandler {
	logger := log.With().Str("handlerName", "customerHandler").Logger()

	return customerHandler{
		responder: NewResponder(logger),
		logger:    logger,
		customers: customers,
	}
}

// getAllCustomers retrieves the tenant's customers
// @Summary Get all customers
// @Tags Customers
// @Produce json
// @Success 200 {object} CollectionResponse[models.Customer]
// @Router /admin/customers [get]
func (h customerHandler) getAllCustomers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		customers, err := h.customers.FindAll(r.Context(), tenant.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find customers", "customers", err))
			return
		}
		h.responder.WriteJSON(w, newCollection(customers))
	}
}

// getCustomer retrieves a customer
// @Summary Get customer
// @Tags Customers
// @Produce json
// @Param customerID path string true "Customer ID" format(uuid)
// @Success 200 {object} models.Customer
// @Failure 404 {object} ErrorResponse "Not Found - Customer not found"
// @Router /admin/customer/{customerID} [get]
func (h customerHandler) getCustomer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		customerID, err := uuidParam(r, "customerID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		customer, err := h.customers.FindByID(r.Context(), tenant.ID, customerID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find customer", "customer", err))
			return
		}
		h.responder.WriteJSON(w, customer)
	}
}
