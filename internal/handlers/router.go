// File: internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-courier/internal/domain"
	"github.com/iyunix/go-courier/internal/middleware"
	"github.com/iyunix/go-courier/internal/ratelimit"
)

// RouterDeps is everything the HTTP surface needs.
type RouterDeps struct {
	Orders          *OrderHandler
	Deliveries      *DeliveryHandler
	JWTSecret       []byte
	ValidateLimiter *ratelimit.MemoryRateLimiter
	Health          []HealthCheck
	Metrics         http.Handler
	Logger          Logger
}

// NewRouter wires every route with its auth and role requirements.
func NewRouter(d RouterDeps) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RecoverPanic(d.Logger))
	r.Use(middleware.LoggingMiddleware(d.Logger))

	r.Handle("/health", HealthHandler(d.Logger, d.Health...)).Methods(http.MethodGet)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.NewJWTMiddleware(d.JWTSecret, d.Logger))

	companies := middleware.RequireRole(d.Logger, domain.RoleCompany)
	drivers := middleware.RequireRole(d.Logger, domain.RoleDriver)
	managers := middleware.RequireRole(d.Logger, domain.RoleCompany, domain.RoleAdmin)

	api.Handle("/orders", companies(http.HandlerFunc(d.Orders.CreateOrderHandler))).Methods(http.MethodPost)
	api.Handle("/orders/{id}/accept", drivers(http.HandlerFunc(d.Orders.AcceptOrderHandler))).Methods(http.MethodPost)
	api.Handle("/orders/{id}/dispatch-codes", drivers(http.HandlerFunc(d.Orders.DispatchCodesHandler))).Methods(http.MethodPost)
	api.Handle("/orders/{id}/codes", managers(http.HandlerFunc(d.Orders.IssueCodesHandler))).Methods(http.MethodPost)

	validate := http.Handler(http.HandlerFunc(d.Deliveries.ValidateHandler))
	if d.ValidateLimiter != nil {
		validate = middleware.RateLimitMiddleware(d.ValidateLimiter, "validate", d.Logger)(validate)
	}
	api.Handle("/legs/{id}/validate", drivers(validate)).Methods(http.MethodPost)
	api.Handle("/legs/{id}/code-hash", managers(http.HandlerFunc(d.Deliveries.SetCodeHashHandler))).Methods(http.MethodPut)
	api.Handle("/legs/{id}/status", http.HandlerFunc(d.Deliveries.StatusHandler)).Methods(http.MethodGet)
	api.Handle("/legs/{id}/audit", managers(http.HandlerFunc(d.Deliveries.AuditHandler))).Methods(http.MethodGet)

	api.Handle("/client-logs", ClientLogHandler(d.Logger)).Methods(http.MethodPost)
	return r
}
