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

type orderRepository interface {
	FindAll(ctx context.Context, tenantID uuid.UUID, status string) ([]*models.Order, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
}

type orderHandler struct {
	responder Responder
	logger    zerolog.Logger
	orders    orderRepository
}

func newOrderHandler(orders orderRepository) orderHandler {
	logger := log.With().Str("handlerName", "orderHandler").Logger()

	return orderHandler{
		responder: NewResponder(logger),
		logger:    logger,
		orders:    orders,
	}
}

// StatusUpdateRequest changes the status of an order or inquiry.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// getAllOrders retrieves the tenant's orders
// @Summary Get all orders
// @Tags Orders
// @Produce json
// @Param status query string false "Filter by status" Enums(pending, paid, fulfilled, cancelled)
// @Success 200 {object} CollectionResponse[models.Order]
// @Router /admin/orders [get]
func (h orderHandler) getAllOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		orders, err := h.orders.FindAll(r.Context(), tenant.ID, r.URL.Query().Get("status"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find orders", "orders", err))
			return
		}
		h.responder.WriteJSON(w, newCollection(orders))
	}
}

// getOrder retrieves an order with its customer
// @Summary Get order
// @Tags Orders
// @Produce json
// @Param orderID path string true "Order ID" format(uuid)
// @Success 200 {object} models.Order
// @Failure 404 {object} ErrorResponse "Not Found - Order not found"
// @Router /admin/order/{orderID} [get]
func (h orderHandler) getOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		orderID, err := uuidParam(r, "orderID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		order, err := h.orders.FindByID(r.Context(), tenant.ID, orderID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find order", "order", err))
			return
		}
		h.responder.WriteJSON(w, order)
	}
}

// updateOrderStatus moves an order to a new status
// @Summary Update order status
// @Tags Orders
// @Accept json
// @Produce json
// @Param orderID path string true "Order ID" format(uuid)
// @Param status body StatusUpdateRequest true "New status"
// @Success 200 {object} models.Order
// @Failure 400 {object} ErrorResponse "Bad Request - Unknown status"
// @Router /admin/order/{orderID}/status [put]
func (h orderHandler) updateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		orderID, err := uuidParam(r, "orderID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req StatusUpdateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !models.ValidOrderStatus(req.Status) {
			h.responder.WriteError(w, errs.NewInvalidFieldError("status", "must be pending, paid, fulfilled or cancelled"))
			return
		}

		if err := h.orders.UpdateStatus(r.Context(), tenant.ID, orderID, req.Status); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "order", err))
			return
		}

		order, err := h.orders.FindByID(r.Context(), tenant.ID, orderID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find order", "order", err))
			return
		}
		h.logger.Info().Str("order", order.Reference()).Str("status", req.Status).Msg("Order status updated")
		h.responder.WriteJSON(w, order)
	}
}
