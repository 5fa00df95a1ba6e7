// File: internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iyunix/go-courier/internal/domain"
	"github.com/iyunix/go-courier/internal/middleware"
	"github.com/iyunix/go-courier/internal/services/delivery_services"
)

// Logger interface for the HTTP layer
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Corpo da requisição inválido.")
		return false
	}
	return true
}

func actorFrom(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Autenticação necessária.")
	}
	return actor, ok
}

// respondServiceError maps service sentinels to statuses. Anything else is
// a dependency failure and is logged.
func respondServiceError(w http.ResponseWriter, logger Logger, err error, op string) {
	switch {
	case errors.Is(err, delivery_services.ErrNotFound):
		respondError(w, http.StatusNotFound, "Recurso não encontrado.")
	case errors.Is(err, delivery_services.ErrUnauthorized):
		respondError(w, http.StatusForbidden, "Você não tem permissão para esta operação.")
	case errors.Is(err, delivery_services.ErrLegAlreadyValidated):
		respondError(w, http.StatusConflict, "Esta entrega já foi validada.")
	case errors.Is(err, delivery_services.ErrOrderNotAvailable):
		respondError(w, http.StatusConflict, "Este pedido não está mais disponível.")
	case errors.Is(err, delivery_services.ErrInvalidHash):
		respondError(w, http.StatusBadRequest, "Hash de código inválido.")
	case errors.Is(err, delivery_services.ErrConcurrentValidation):
		respondError(w, http.StatusConflict, "Validação em andamento. Tente novamente.")
	default:
		logger.Error("request failed", "op", op, "error", err)
		respondError(w, http.StatusInternalServerError, "Erro interno. Tente novamente mais tarde.")
	}
}
