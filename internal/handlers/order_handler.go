// File: internal/handlers/order_handler.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-courier/internal/services/delivery_services"
)

type OrderHandler struct {
	orders   *delivery_services.OrderService
	dispatch *delivery_services.DispatchService
	codes    *delivery_services.CodeService
	logger   Logger
}

func NewOrderHandler(orders *delivery_services.OrderService, dispatch *delivery_services.DispatchService, codes *delivery_services.CodeService, logger Logger) *OrderHandler {
	return &OrderHandler{orders: orders, dispatch: dispatch, codes: codes, logger: logger}
}

type createOrderRequest struct {
	Legs []delivery_services.NewLeg `json:"legs"`
}

// CreateOrderHandler returns the plaintext codes once; they are not stored.
func (h *OrderHandler) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req createOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Legs) == 0 {
		respondError(w, http.StatusBadRequest, "O pedido precisa de pelo menos uma entrega.")
		return
	}
	for _, l := range req.Legs {
		if l.CustomerName == "" {
			respondError(w, http.StatusBadRequest, "Nome do cliente é obrigatório.")
			return
		}
	}

	created, err := h.orders.CreateOrder(r.Context(), actor, req.Legs)
	if err != nil {
		respondServiceError(w, h.logger, err, "create_order")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *OrderHandler) AcceptOrderHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	accepted, err := h.orders.AcceptOrder(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, h.logger, err, "accept_order")
		return
	}
	respondJSON(w, http.StatusOK, accepted)
}

func (h *OrderHandler) DispatchCodesHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	result, err := h.dispatch.DispatchCodes(r.Context(), mux.Vars(r)["id"], actor.ID)
	if err != nil {
		respondServiceError(w, h.logger, err, "dispatch_codes")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// IssueCodesHandler regenerates codes for manual relay by the company.
func (h *OrderHandler) IssueCodesHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	codes, err := h.codes.IssueCodes(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, h.logger, err, "issue_codes")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"codes": codes})
}
