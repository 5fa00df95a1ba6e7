// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"github.com/iyunix/go-courier/internal/config"
	"github.com/iyunix/go-courier/internal/database"
	"github.com/iyunix/go-courier/internal/events"
	"github.com/iyunix/go-courier/internal/handlers"
	"github.com/iyunix/go-courier/internal/lock"
	"github.com/iyunix/go-courier/internal/metrics"
	"github.com/iyunix/go-courier/internal/ratelimit"
	"github.com/iyunix/go-courier/internal/repository/audit"
	"github.com/iyunix/go-courier/internal/repository/leg"
	"github.com/iyunix/go-courier/internal/repository/order"
	"github.com/iyunix/go-courier/internal/services"
	"github.com/iyunix/go-courier/internal/services/delivery_services"
	"github.com/iyunix/go-courier/internal/services/sms"
)

// legLockTTL only bounds how long a crashed holder blocks a leg; live
// holders keep renewing it.
const legLockTTL = 30 * time.Second

func main() {
	cfg := config.Load()
	logger := services.NewLogger("courier", cfg.Environment, cfg.LogLevel)

	err := run(cfg, logger)
	if err != nil {
		logger.Error("server stopped", "error", err)
	}
	if s, ok := logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

// run owns every resource it opens; they are released on return, error or not.
func run(cfg *config.Config, logger services.Logger) error {
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer closeDB(db)

	// --- Repositories ---
	orderRepo := order.NewGormOrderRepository(db)
	legRepo := leg.NewGormLegRepository(db)
	auditRepo := audit.NewGormAuditRepository(db)

	// --- Infrastructure ---
	locker, closeLocker, err := newLocker(cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()
	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	provider, err := sms.NewProvider(&cfg.SMS, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize SMS provider: %w", err)
	}
	metrics.Init()

	// --- Services ---
	validationService := delivery_services.NewValidationService(legRepo, orderRepo, locker, publisher, logger)
	codeService := delivery_services.NewCodeService(legRepo, orderRepo, logger)
	dispatchService := delivery_services.NewDispatchService(orderRepo, legRepo, provider, locker, publisher, logger, cfg.DispatchConcurrency).
		WithSendTimeout(cfg.SMS.SendBudget())
	orderService := delivery_services.NewOrderService(orderRepo, dispatchService, cfg.AutoDispatchOnAccept, logger)
	auditService := delivery_services.NewAuditService(auditRepo, legRepo, orderRepo)

	// --- Handlers ---
	validateLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.ValidateConfig(cfg.ValidateRateLimit))
	defer validateLimiter.Close()

	router := handlers.NewRouter(handlers.RouterDeps{
		Orders:          handlers.NewOrderHandler(orderService, dispatchService, codeService, logger),
		Deliveries:      handlers.NewDeliveryHandler(validationService, codeService, auditService, logger),
		JWTSecret:       []byte(cfg.JWTSecretKey),
		ValidateLimiter: validateLimiter,
		Health: []handlers.HealthCheck{
			{Name: "database", Check: pingDB(db)},
			{Name: "sms", Check: provider.HealthCheck},
		},
		Metrics: metrics.Handler(),
		Logger:  logger,
	})

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           86400,
	})

	// --- Server Configuration ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           corsHandler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server starting",
		"port", cfg.ServerPort,
		"env", cfg.Environment,
		"db_driver", cfg.DBDriver,
		"sms_provider", provider.Name(),
		"auto_dispatch", cfg.AutoDispatchOnAccept)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server startup failed: %w", err)
		}
		return nil
	case <-stop:
	}

	logger.Info("shutting down server gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exited")
	return nil
}

// newLocker uses Redis when configured so several instances share leg locks.
func newLocker(cfg *config.Config, logger services.Logger) (lock.Locker, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info("using in-process leg locks")
		return lock.NewMemoryLocker(), func() {}, nil
	}
	rl, err := lock.NewRedisLocker(cfg.RedisURL, legLockTTL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using redis leg locks")
	return rl, func() { _ = rl.Close() }, nil
}

func newPublisher(cfg *config.Config, logger services.Logger) (events.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NoopPublisher{}, nil
	}
	p, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Kafka publisher: %w", err)
	}
	logger.Info("publishing code events to kafka", "topic", cfg.KafkaAuditTopic)
	return p, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func pingDB(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) > 0 {
		return cfg.CORSAllowedOrigins
	}
	if cfg.IsProduction() {
		return []string{}
	}
	return []string{"*"}
}
