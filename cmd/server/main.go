package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcashdrawer "github.com/erp/cashdrawer/internal/application/cashdrawer"
	"github.com/erp/cashdrawer/internal/domain/shared"
	"github.com/erp/cashdrawer/internal/infrastructure/auth"
	"github.com/erp/cashdrawer/internal/infrastructure/cache"
	"github.com/erp/cashdrawer/internal/infrastructure/config"
	"github.com/erp/cashdrawer/internal/infrastructure/logger"
	"github.com/erp/cashdrawer/internal/infrastructure/notification"
	"github.com/erp/cashdrawer/internal/infrastructure/persistence"
	"github.com/erp/cashdrawer/internal/infrastructure/printing"
	"github.com/erp/cashdrawer/internal/interfaces/http/handler"
	"github.com/erp/cashdrawer/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting cash drawer service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed GORM logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Idempotency store: Redis when configured, in-memory fallback for
	// single-instance deployments
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Host != "" {
		store, err := cache.NewRedisIdempotencyStore(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		idempotencyStore = store
		log.Info("Redis idempotency store connected")
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
		log.Warn("Redis not configured, using in-memory idempotency store")
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Repositories
	registerRepo := persistence.NewGormCashRegisterRepository(db.DB)
	txRepo := persistence.NewGormCashTransactionRepository(db.DB)
	auditRepo := persistence.NewGormCashAuditRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	ledgerScope := persistence.NewGormLedgerMutationScope(db.DB)

	// Collaborators
	authorizer := auth.NewSupervisorCodeAuthorizer(userRepo, log)
	receiptPrinter := printing.NewWebhookReceiptPrinter(cfg.Drawer.ReceiptWebhookURL, cfg.Drawer.WebhookTimeout, log)
	notifier := notification.NewWebhookNotifier(cfg.Drawer.NotifyWebhookURL, cfg.Drawer.WebhookTimeout, log)
	jwtService := auth.NewJWTService(cfg.JWT)

	// Application services
	registerService := appcashdrawer.NewRegisterService(
		registerRepo,
		txRepo,
		ledgerScope,
		appcashdrawer.NewChangeAdvisor(log),
		log,
	)
	auditService := appcashdrawer.NewAuditService(
		registerRepo,
		auditRepo,
		ledgerScope,
		authorizer,
		receiptPrinter,
		notifier,
		idempotencyStore,
		log,
	)
	auditService.SetIdempotencyConfig(shared.IdempotencyConfig{
		TTL:     cfg.Drawer.IdempotencyTTL,
		Enabled: true,
	})

	// HTTP layer
	engine := router.New(router.Dependencies{
		Config:          cfg,
		Logger:          log,
		JWTService:      jwtService,
		AuthHandler:     handler.NewAuthHandler(userRepo, jwtService, log),
		RegisterHandler: handler.NewRegisterHandler(registerService),
		AuditHandler:    handler.NewAuditHandler(auditService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
