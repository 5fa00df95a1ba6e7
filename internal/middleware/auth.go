package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/iyunix/go-courier/internal/auth"
	"github.com/iyunix/go-courier/internal/domain"
)

// NewJWTMiddleware validates a bearer token (or the auth_token cookie) and
// puts the caller's actor into the request context.
func NewJWTMiddleware(secretKey []byte, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Autenticação necessária.")
				return
			}

			actor, err := auth.ValidateToken(token, secretKey)
			if err != nil {
				logger.Warn("invalid token", "error", err, "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "Sessão inválida ou expirada.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole lets the request through only for the listed roles.
// It MUST be used AFTER the JWT middleware.
func RequireRole(logger Logger, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Autenticação necessária.")
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			logger.Warn("role not allowed for route", "actor_id", actor.ID, "role", actor.Role, "path", r.URL.Path)
			writeError(w, http.StatusForbidden, "Você não tem permissão para esta operação.")
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(authCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
