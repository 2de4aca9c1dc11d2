package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	policyapp "github.com/stocksync/engine/internal/application/policy"
	"github.com/stocksync/engine/internal/application/reconcile"
	"github.com/stocksync/engine/internal/application/resolver"
	"github.com/stocksync/engine/internal/domain/stock"
	syncdomain "github.com/stocksync/engine/internal/domain/sync"
	"github.com/stocksync/engine/internal/infrastructure/cache"
	"github.com/stocksync/engine/internal/infrastructure/config"
	"github.com/stocksync/engine/internal/infrastructure/legacy"
	"github.com/stocksync/engine/internal/infrastructure/logger"
	"github.com/stocksync/engine/internal/infrastructure/persistence"
	"github.com/stocksync/engine/internal/infrastructure/scheduler"
	"github.com/stocksync/engine/internal/infrastructure/storefront"
	"github.com/stocksync/engine/internal/interfaces/http/handler"
	"github.com/stocksync/engine/internal/interfaces/http/router"
)

func main() {
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
		_ = log.Sync()
	}()

	log.Info("Starting stock sync engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	// Record store
	gormLogger := logger.NewGormLogger(log.Named("gorm"), logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Failed to close database", zap.Error(err))
		}
	}()

	productRepo := persistence.NewGormProductRepository(db.DB)
	attributeRepo := persistence.NewGormAttributeRepository(db.DB)
	attributeValueRepo := persistence.NewGormAttributeValueRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	addressRepo := persistence.NewGormAddressRepository(db.DB)
	countryRepo := persistence.NewGormCountryRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	currencyRepo := persistence.NewGormCurrencyRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	stockRecordRepo := persistence.NewGormStockRecordRepository(db.DB)
	warehouseProductRepo := persistence.NewGormWarehouseProductRepository(db.DB)
	replenishmentRepo := persistence.NewGormReplenishmentRepository(db.DB)
	transferRepo := persistence.NewGormTransferRepository(db.DB)
	stockTakingRepo := persistence.NewGormStockTakingRepository(db.DB)
	runRepo := persistence.NewGormRunRepository(db.DB)
	failureRepo := persistence.NewGormFailureLogRepository(db.DB)
	orderImportRepo := persistence.NewGormOrderImportRepository(db.DB)

	// Legacy source
	legacyConn, err := legacy.Open(&cfg.LegacyDB, log.Named("legacy"))
	if err != nil {
		log.Fatal("Failed to connect to legacy database", zap.Error(err))
	}
	defer func() {
		if err := legacyConn.Close(); err != nil {
			log.Warn("Failed to close legacy connection", zap.Error(err))
		}
	}()
	gateway := legacy.NewGateway(legacyConn)

	// Run lease: redis when configured, in-process otherwise
	var lease syncdomain.RunLease
	if cfg.Redis.Host != "" {
		redisLease, err := cache.NewRedisRunLease(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisLease.Close(); err != nil {
				log.Warn("Failed to close redis client", zap.Error(err))
			}
		}()
		lease = redisLease
	} else {
		log.Warn("Redis not configured, using in-process run lease")
		lease = cache.NewInMemoryRunLease()
	}

	// Storefront platforms
	platforms := make([]syncdomain.StorefrontPlatform, 0, len(cfg.Storefront.Platforms))
	for _, platformCfg := range cfg.Storefront.Platforms {
		platforms = append(platforms, storefront.NewRESTAdapter(platformCfg))
		log.Info("Registered storefront platform",
			zap.String("code", platformCfg.Code),
			zap.Int64("sales_channel_id", platformCfg.SalesChannelID),
		)
	}

	// Application services
	entities := resolver.NewEntityResolver(
		productRepo, attributeRepo, attributeValueRepo,
		customerRepo, addressRepo, countryRepo,
		supplierRepo, currencyRepo,
		log.Named("resolver"),
	)
	ledger := stock.NewLedger(stockRecordRepo)
	policyService := policyapp.NewService(
		warehouseProductRepo, productRepo, warehouseRepo,
		cfg.Sync.DefaultCalculationType,
	)

	replenishmentProcessor := reconcile.NewReplenishmentProcessor(
		gateway, entities, ledger, replenishmentRepo, warehouseRepo,
		lease, runRepo, failureRepo, log.Named("replenishment"),
	)
	transferProcessor := reconcile.NewTransferProcessor(
		gateway, entities, ledger, transferRepo, warehouseRepo,
		lease, runRepo, failureRepo, log.Named("transfer"),
	)
	stockTakingProcessor := reconcile.NewStockTakingProcessor(
		gateway, entities, ledger, stockTakingRepo, warehouseRepo,
		lease, runRepo, failureRepo, log.Named("stocktaking"),
	)
	orderProcessor := reconcile.NewOrderProcessor(
		platforms, entities, ledger, orderImportRepo, warehouseRepo,
		lease, runRepo, failureRepo, log.Named("order"),
	)
	orderProcessor.Lookback = cfg.Sync.OrderLookback

	replenishmentProcessor.SetLeaseTTL(cfg.Sync.LeaseTTL)
	transferProcessor.SetLeaseTTL(cfg.Sync.LeaseTTL)
	stockTakingProcessor.SetLeaseTTL(cfg.Sync.LeaseTTL)
	orderProcessor.SetLeaseTTL(cfg.Sync.LeaseTTL)

	// Background scheduler
	var syncScheduler *scheduler.SyncScheduler
	if cfg.Sync.SchedulerEnabled {
		syncScheduler = scheduler.NewSyncScheduler([]scheduler.Entry{
			{Type: syncdomain.TypeReplenishment, Interval: cfg.Sync.ReplenishmentInterval, Processor: replenishmentProcessor},
			{Type: syncdomain.TypeTransfer, Interval: cfg.Sync.TransferInterval, Processor: transferProcessor},
			{Type: syncdomain.TypeStockTaking, Interval: cfg.Sync.StockTakingInterval, Processor: stockTakingProcessor},
			{Type: syncdomain.TypeOrder, Interval: cfg.Sync.OrderInterval, Processor: orderProcessor},
		}, log.Named("scheduler"))

		if err := syncScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
	} else {
		log.Info("Background scheduler disabled, runs trigger via HTTP only")
	}

	// HTTP surface
	syncHandler := handler.NewSyncHandler(
		map[syncdomain.Type]handler.ProcessorFunc{
			syncdomain.TypeReplenishment: replenishmentProcessor.Run,
			syncdomain.TypeTransfer:      transferProcessor.Run,
			syncdomain.TypeStockTaking:   stockTakingProcessor.Run,
			syncdomain.TypeOrder:         orderProcessor.Run,
		},
		runRepo, failureRepo, log.Named("http"),
	)
	policyHandler := handler.NewPolicyHandler(policyService)
	healthHandler := handler.NewHealthHandler(db)

	engine := router.New(router.Config{
		SyncHandler:   syncHandler,
		PolicyHandler: policyHandler,
		HealthHandler: healthHandler,
		Logger:        log,
		Env:           cfg.App.Env,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if syncScheduler != nil {
		if err := syncScheduler.Stop(ctx); err != nil {
			log.Warn("Scheduler did not stop cleanly", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
