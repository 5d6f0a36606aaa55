package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/farmmarket/internal/auth"
	"github.com/vasiliy-maslov/farmmarket/internal/order"
)

type OrderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderHandler struct {
	orders   order.Service
	validate *validator.Validate
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		validate: validator.New(),
	}
}

func (h *OrderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var req CreateOrderRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	items := make([]order.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, order.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	created, err := h.orders.Create(r.Context(), identity.UserID, items)
	if err != nil {
		log.Warn().Err(err).Int64("buyer_id", identity.UserID).Msg("handler: failed to create order")
		respondDomainError(w, err, "failed to create order")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *OrderHandler) HandleListForBuyer(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	orders, err := h.orders.ListByBuyer(r.Context(), identity.UserID)
	if err != nil {
		log.Error().Err(err).Int64("buyer_id", identity.UserID).Msg("handler: failed to list buyer orders")
		respondDomainError(w, err, "failed to list orders")
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) HandleListForFarmer(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	orders, err := h.orders.ListByFarmer(r.Context(), identity.UserID)
	if err != nil {
		log.Error().Err(err).Int64("farmer_id", identity.UserID).Msg("handler: failed to list farmer orders")
		respondDomainError(w, err, "failed to list orders")
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list orders")
		respondDomainError(w, err, "failed to list orders")
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) HandlePay(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	intent, err := h.orders.Pay(r.Context(), identity.UserID, id)
	if err != nil {
		log.Warn().Err(err).Int64("order_id", id).Msg("handler: failed to pay order")
		respondDomainError(w, err, "failed to pay order")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"order_id":      id,
		"status":        order.StatusPaid,
		"intent_id":     intent.ID,
		"client_secret": intent.ClientSecret,
	})
}

func (h *OrderHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	if err := h.orders.Approve(r.Context(), identity.UserID, id); err != nil {
		log.Warn().Err(err).Int64("order_id", id).Msg("handler: failed to approve order")
		respondDomainError(w, err, "failed to approve order")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"order_id": id, "status": order.StatusConfirmed})
}

func (h *OrderHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	if err := h.orders.Cancel(r.Context(), identity.UserID, identity.Role, id); err != nil {
		log.Warn().Err(err).Int64("order_id", id).Msg("handler: failed to cancel order")
		respondDomainError(w, err, "failed to cancel order")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"order_id": id, "status": order.StatusCancelled})
}

// HandleUpdateStatus is the farmer-facing status update. The requested status
// is dispatched through the named lifecycle transitions, so an illegal jump
// is rejected instead of written.
func (h *OrderHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	var req UpdateOrderStatusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	requested := order.Status(req.Status)
	if !requested.Valid() {
		respondWithError(w, http.StatusBadRequest, "unknown order status")
		return
	}

	if err := h.orders.RequestStatus(r.Context(), identity.UserID, id, requested); err != nil {
		if !errors.Is(err, order.ErrInvalidTransition) {
			log.Warn().Err(err).Int64("order_id", id).Str("status", req.Status).Msg("handler: failed to update order status")
		}
		respondDomainError(w, err, "failed to update order status")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"order_id": id, "status": requested})
}
