// File: internal/handlers/delivery_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-courier/internal/services/delivery_services"
)

// DeliveryHandler serves the per-leg code endpoints.
type DeliveryHandler struct {
	validation *delivery_services.ValidationService
	codes      *delivery_services.CodeService
	audits     *delivery_services.AuditService
	logger     Logger
}

func NewDeliveryHandler(validation *delivery_services.ValidationService, codes *delivery_services.CodeService, audits *delivery_services.AuditService, logger Logger) *DeliveryHandler {
	return &DeliveryHandler{validation: validation, codes: codes, audits: audits, logger: logger}
}

type validateRequest struct {
	Code string `json:"code"`
}

var outcomeStatus = map[delivery_services.Outcome]int{
	delivery_services.OutcomeValidated:        http.StatusOK,
	delivery_services.OutcomeMismatch:         http.StatusUnprocessableEntity,
	delivery_services.OutcomeNotFound:         http.StatusNotFound,
	delivery_services.OutcomeNotConfigured:    http.StatusConflict,
	delivery_services.OutcomeAlreadyValidated: http.StatusConflict,
	delivery_services.OutcomeAttemptsExceeded: http.StatusLocked,
	delivery_services.OutcomeUnauthorized:     http.StatusForbidden,
}

// ValidateHandler redeems a code for the calling driver. The body is the
// ValidationResult for every outcome, so the app can render the message.
func (h *DeliveryHandler) ValidateHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req validateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.validation.Validate(r.Context(), mux.Vars(r)["id"], req.Code, actor.ID)
	if err != nil {
		respondServiceError(w, h.logger, err, "validate")
		return
	}
	status, ok := outcomeStatus[result.Outcome]
	if !ok {
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, result)
}

type setCodeHashRequest struct {
	CodeHash string `json:"code_hash"`
}

func (h *DeliveryHandler) SetCodeHashHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req setCodeHashRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.codes.SetCodeHashAs(r.Context(), actor, mux.Vars(r)["id"], req.CodeHash); err != nil {
		respondServiceError(w, h.logger, err, "set_code_hash")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DeliveryHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	status, err := h.audits.Status(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, h.logger, err, "leg_status")
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// AuditHandler lists attempts, paginated with ?limit= and ?offset=.
func (h *DeliveryHandler) AuditHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit < 1 {
		limit = 50
	}
	offset, err := strconv.Atoi(query.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	history, err := h.audits.History(r.Context(), actor, mux.Vars(r)["id"], limit, offset)
	if err != nil {
		respondServiceError(w, h.logger, err, "leg_audit")
		return
	}
	respondJSON(w, http.StatusOK, history)
}
