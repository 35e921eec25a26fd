package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appsync "github.com/erp/stocksync/internal/application/sync"
	"github.com/erp/stocksync/internal/domain/catalog"
	"github.com/erp/stocksync/internal/infrastructure/config"
	"github.com/erp/stocksync/internal/infrastructure/erp"
	"github.com/erp/stocksync/internal/infrastructure/inventoryext"
	"github.com/erp/stocksync/internal/infrastructure/logger"
	"github.com/erp/stocksync/internal/infrastructure/persistence"
	"github.com/erp/stocksync/internal/infrastructure/scheduler"
	"github.com/erp/stocksync/internal/infrastructure/storefront"
	"github.com/erp/stocksync/internal/interfaces/http/handler"
	"github.com/erp/stocksync/internal/interfaces/http/router"
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

	log.Info("Starting stocksync",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.Int("stores", len(cfg.Stores)),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize Redis for run locks
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	log.Info("Redis connected successfully")

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	runRepo := persistence.NewGormSyncRunRepository(db.DB)

	// Initialize external clients
	erpClient, err := erp.NewClient(erp.NewConfigFromApp(&cfg.ERP))
	if err != nil {
		log.Fatal("Failed to initialize ERP client", zap.Error(err))
	}

	extClient, err := inventoryext.NewClient(inventoryext.NewConfigFromApp(&cfg.InventoryExt))
	if err != nil {
		log.Fatal("Failed to initialize inventory extension client", zap.Error(err))
	}

	// The storefront is optional; without one the matching phase is skipped.
	var storefrontGateway appsync.StorefrontGateway
	if cfg.Storefront.BaseURL != "" {
		sfClient, err := storefront.NewClient(storefront.NewConfigFromApp(&cfg.Storefront))
		if err != nil {
			log.Fatal("Failed to initialize storefront client", zap.Error(err))
		}
		storefrontGateway = sfClient
	}

	// Initialize the sync orchestrator
	locker := scheduler.NewRedisRunLocker(redisClient)
	syncService := appsync.NewService(
		productRepo,
		runRepo,
		erpClient,
		extClient,
		storefrontGateway,
		locker,
		log,
	)

	// Settings snapshots come from process configuration
	storeSettings := buildStoreSettings(cfg.Stores)
	settingsProvider := func() []appsync.StoreSettings {
		return storeSettings
	}
	settingsResolver := func(storeID string) (appsync.StoreSettings, bool) {
		for _, s := range storeSettings {
			if s.StoreID == storeID {
				return s, true
			}
		}
		return appsync.StoreSettings{}, false
	}

	// Start the background sync loop
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()

	if cfg.Scheduler.Enabled {
		syncScheduler, err := scheduler.NewSyncScheduler(
			scheduler.Config{
				Enabled:      cfg.Scheduler.Enabled,
				TickInterval: cfg.Scheduler.TickInterval,
			},
			settingsProvider,
			syncService,
			log,
		)
		if err != nil {
			log.Fatal("Failed to initialize sync scheduler", zap.Error(err))
		}
		if err := syncScheduler.Start(schedulerCtx); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := syncScheduler.Stop(stopCtx); err != nil {
				log.Error("Error stopping sync scheduler", zap.Error(err))
			}
		}()
	}

	// Setup HTTP server
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(logger.GinMiddleware(log), logger.Recovery(log))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewSyncHandler(syncService, runRepo, settingsResolver))
	r.Register(handler.NewProductHandler(productRepo))
	r.Setup()

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
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// buildStoreSettings converts store configuration into run settings
// snapshots
func buildStoreSettings(stores []config.StoreConfig) []appsync.StoreSettings {
	settings := make([]appsync.StoreSettings, 0, len(stores))
	for _, store := range stores {
		s := appsync.StoreSettings{
			StoreID: store.ID,
			Enabled: store.Enabled,
			FieldMapping: catalog.FieldMapping{
				InternalID:     store.FieldMapping.InternalID,
				LegacyID:       store.FieldMapping.LegacyID,
				SKU:            store.FieldMapping.SKU,
				Barcode:        store.FieldMapping.Barcode,
				Name:           store.FieldMapping.Name,
				Category:       store.FieldMapping.Category,
				Unit:           store.FieldMapping.Unit,
				Group:          store.FieldMapping.Group,
				VatCode:        store.FieldMapping.VatCode,
				Quantity:       store.FieldMapping.Quantity,
				RetailPrice:    store.FieldMapping.RetailPrice,
				WholesalePrice: store.FieldMapping.WholesalePrice,
				SalePrice:      store.FieldMapping.SalePrice,
				PurchasePrice:  store.FieldMapping.PurchasePrice,
				Discount:       store.FieldMapping.Discount,
			},
			Matcher: catalog.MatcherOptions{
				PrimaryCode:   catalog.CodeField(store.PrimaryCodeField),
				SecondaryCode: catalog.CodeField(store.SecondaryCodeField),
			},
			CreateEnabled: store.CreateEnabled,
			UpdateEnabled: store.UpdateEnabled,
			MaxBatchSize:  store.MaxBatchSize,
			ChunkSize:     store.ChunkSize,
			ChunkDelay:    store.ChunkDelay,
			SyncInterval:  store.SyncInterval,
			Storefront: appsync.StorefrontSettings{
				Enabled:       store.StorefrontEnabled,
				CreateMissing: store.StorefrontCreateMissing,
				Concurrency:   store.StorefrontConcurrency,
			},
		}
		s.Normalize()
		settings = append(settings, s)
	}
	return settings
}
