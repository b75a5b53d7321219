package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	catalogapp "github.com/facturar/backend/internal/application/catalog"
	invoicingapp "github.com/facturar/backend/internal/application/invoicing"
	partnerapp "github.com/facturar/backend/internal/application/partner"
	reportapp "github.com/facturar/backend/internal/application/report"
	"github.com/facturar/backend/internal/domain/report"
	"github.com/facturar/backend/internal/infrastructure/cache"
	"github.com/facturar/backend/internal/infrastructure/config"
	"github.com/facturar/backend/internal/infrastructure/event"
	"github.com/facturar/backend/internal/infrastructure/logger"
	"github.com/facturar/backend/internal/infrastructure/persistence"
	"github.com/facturar/backend/internal/infrastructure/telemetry"
	"github.com/facturar/backend/internal/interfaces/http/handler"
	"github.com/facturar/backend/internal/interfaces/http/middleware"
	"github.com/facturar/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting ledger server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQuery))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" && cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}
	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:  cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem: dbSystem,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	metrics := telemetry.NewLedgerMetrics()

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(metrics)
	eventBus.Subscribe(event.NewJournalHandler(log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()

	// Repositories
	txScope := persistence.NewGormTransactionScope(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	dashboardRepo := persistence.NewGormDashboardRepository(db.DB)

	// Services
	invoiceService := invoicingapp.NewInvoiceService(txScope, invoiceRepo, customerRepo, log)
	invoiceService.SetIdempotencyStore(idempotencyStore, cfg.Ledger.IdempotencyTTL)
	invoiceService.SetEventPublisher(eventBus)
	invoiceService.SetRecorder(metrics)

	paymentService := invoicingapp.NewPaymentService(txScope, invoicingapp.RetryPolicy{
		MaxRetries: cfg.Ledger.PaymentMaxRetries,
		Backoff:    cfg.Ledger.RetryBackoff,
	}, log)
	paymentService.SetEventPublisher(eventBus)
	paymentService.SetRecorder(metrics)

	collectedScope, err := report.ParseCollectedScope(cfg.Ledger.CollectedScope)
	if err != nil {
		log.Fatal("Invalid collected scope", zap.Error(err))
	}
	dashboardService := reportapp.NewDashboardService(dashboardRepo, collectedScope, cfg.Report.Location(), log)

	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to access sql.DB", zap.Error(err))
	}

	opts := router.Options{
		HTTP:           cfg.HTTP,
		Logger:         log,
		TracingEnabled: cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		Health:         handler.NewHealthHandler(sqlDB, version),
	}
	if cfg.Metrics.Enabled {
		opts.Metrics = metrics
		opts.MetricsPath = cfg.Metrics.Path
	}

	engine := router.New(opts).Register(
		handler.NewInvoiceHandler(invoiceService, paymentService),
		handler.NewProductHandler(catalogapp.NewProductService(productRepo)),
		handler.NewCustomerHandler(partnerapp.NewCustomerService(customerRepo)),
		handler.NewDashboardHandler(dashboardService),
	).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
