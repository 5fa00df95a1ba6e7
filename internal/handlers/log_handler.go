// File: internal/handlers/log_handler.go
package handlers

import (
	"net/http"

	"github.com/iyunix/go-courier/internal/middleware"
)

// ClientLogPayload is an error report sent by the driver or company app.
type ClientLogPayload struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Context any    `json:"context,omitempty"`
}

// ClientLogHandler forwards app-side errors into the server log.
func ClientLogHandler(logger Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload ClientLogPayload
		if !decodeJSON(w, r, &payload) {
			return
		}
		kv := []interface{}{"client_level", payload.Level, "context", payload.Context}
		if actor, ok := middleware.ActorFromContext(r.Context()); ok {
			kv = append(kv, "actor_id", actor.ID)
		}
		switch payload.Level {
		case "error":
			logger.Error("client log: "+payload.Message, kv...)
		case "warn":
			logger.Warn("client log: "+payload.Message, kv...)
		default:
			logger.Info("client log: "+payload.Message, kv...)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
