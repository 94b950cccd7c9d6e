package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/growthdeck/backend/internal/application/commerce"
	appingest "github.com/growthdeck/backend/internal/application/ingest"
	appreport "github.com/growthdeck/backend/internal/application/report"
	appsync "github.com/growthdeck/backend/internal/application/sync"
	"github.com/growthdeck/backend/internal/domain/report"
	"github.com/growthdeck/backend/internal/infrastructure/config"
	"github.com/growthdeck/backend/internal/infrastructure/connector"
	"github.com/growthdeck/backend/internal/infrastructure/logger"
	"github.com/growthdeck/backend/internal/infrastructure/persistence"
	"github.com/growthdeck/backend/internal/infrastructure/persistence/models"
	"github.com/growthdeck/backend/internal/interfaces/http/handler"
	"github.com/growthdeck/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := persistence.Shared(&cfg.Database, logger.NewGormLogger(log, gormlogger.Warn))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if err := db.DB.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// Repositories.
	adRepo := persistence.NewAdPerformanceRepository(db.DB)
	orderRepo := persistence.NewOrderRepository(db.DB)
	productRepo := persistence.NewProductRepository(db.DB)
	analyticsRepo := persistence.NewDailyAnalyticsRepository(db.DB)
	inventoryRepo := persistence.NewInventorySnapshotRepository(db.DB)
	syncLogRepo := persistence.NewSyncLogRepository(db.DB)
	connectionRepo := persistence.NewConnectionRepository(db.DB)
	aggregateRepo := persistence.NewAggregateRepository(db.DB)
	settingsRepo := persistence.NewSettingsRepository(db.DB,
		report.LifecycleThresholds{
			NewMaxDays:     cfg.Report.NewMaxDays,
			ReorderMaxDays: cfg.Report.ReorderMaxDays,
			LapsedMaxDays:  cfg.Report.LapsedMaxDays,
		},
		report.FeeSettings{
			PlatformFeeRate:       decimal.NewFromFloat(cfg.Report.PlatformFeeRate),
			PerOrderFulfilmentFee: decimal.NewFromFloat(cfg.Report.PerOrderFulfilmentFee),
		})

	// Provider adapters.
	registry := connector.NewRegistry(connector.Options{
		PageSize:       cfg.Sync.PageSize,
		InterPageDelay: cfg.Sync.InterPageDelay,
		RequestTimeout: cfg.Sync.RequestTimeout,
	})

	// Application services.
	orchestrator := appsync.NewOrchestrator(connectionRepo,
		appsync.Fetchers{
			Shopfront: registry.Shopfront,
			MetaAds:   registry.MetaAds,
			SearchAds: registry.SearchAds,
			SitePulse: registry.SitePulse,
			Fulfilbay: registry.Fulfilbay,
		},
		appsync.Repositories{
			Ads:       adRepo,
			Orders:    orderRepo,
			Products:  productRepo,
			Analytics: analyticsRepo,
			Inventory: inventoryRepo,
			SyncLogs:  syncLogRepo,
		},
		cfg.Sync.MaxConcurrentUnits, log)

	importService := appingest.NewService(appingest.Repositories{
		Ads:       adRepo,
		Products:  productRepo,
		Analytics: analyticsRepo,
		Inventory: inventoryRepo,
		SyncLogs:  syncLogRepo,
	}, log)

	reportService := appreport.NewService(aggregateRepo, settingsRepo, log)
	webhookService := commerce.NewWebhookService(connectionRepo, orderRepo, log)

	// HTTP wiring.
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			return fmt.Errorf("set trusted proxies: %w", err)
		}
	}
	router.Setup(engine,
		router.Config{
			JWTSecret:    cfg.HTTP.JWTSecret,
			MaxBodyBytes: cfg.HTTP.MaxBodySize,
			Logger:       log,
		},
		handler.NewSystemHandler(db.DB, version),
		handler.NewWebhookHandler(webhookService),
		handler.NewSyncHandler(orchestrator, syncLogRepo),
		handler.NewImportHandler(importService),
		handler.NewReportHandler(reportService),
	)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", server.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("version", version))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
