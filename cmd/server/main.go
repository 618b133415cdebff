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

	"github.com/ikkim/pumpcatalog-backend/config"
	"github.com/ikkim/pumpcatalog-backend/internal/app/controller"
	"github.com/ikkim/pumpcatalog-backend/internal/app/repository"
	"github.com/ikkim/pumpcatalog-backend/internal/app/service"
	"github.com/ikkim/pumpcatalog-backend/internal/db"
	"github.com/ikkim/pumpcatalog-backend/internal/middleware"
	"github.com/ikkim/pumpcatalog-backend/internal/router"
	"github.com/ikkim/pumpcatalog-backend/internal/scheduler"
	"github.com/ikkim/pumpcatalog-backend/internal/storage"
	"github.com/ikkim/pumpcatalog-backend/internal/websocket"
	"github.com/ikkim/pumpcatalog-backend/pkg/logger"
	"github.com/ikkim/pumpcatalog-backend/pkg/redis"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Format == "console",
	})

	logger.Info("Starting pump catalog server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"db_driver":   cfg.Database.Driver,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	database, err := db.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Parts cache is optional
	var partsCache service.PartsCache
	if cfg.Redis.Enabled() {
		cache, err := redis.New(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, parts cache disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer cache.Close()
			partsCache = cache
		}
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Initialize repositories
	productRepo := repository.NewProductRepository(database)
	partRepo := repository.NewPartRepository(database)
	schemeRepo := repository.NewSchemeRepository(database)
	orderRepo := repository.NewOrderRepository(database)

	// Archive uploads are optional
	var archiveStore service.ArchiveStore
	if cfg.S3.Enabled() {
		archiveStore = storage.NewS3Storage(ctx, &cfg.S3)
	}

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, partRepo, schemeRepo, partsCache, cfg.Redis.PartsTTL)
	orderService := service.NewOrderService(orderRepo, database, cfg.Database.Isolation(), hub)
	exportService := service.NewExportService(orderRepo, archiveStore, storage.ObjectKey)

	if archiveStore != nil {
		archiver := scheduler.NewOrderArchiveScheduler(cfg.Archive.Cron, exportService, time.Minute)
		if err := archiver.Start(); err != nil {
			logger.Fatal("Failed to start order archive scheduler", err)
		}
		defer archiver.Stop()
	}

	// Initialize controllers
	catalogController := controller.NewCatalogController(catalogService)
	orderController := controller.NewOrderController(orderService, exportService, hub, cfg.CORS.AllowedOrigins)

	orderLimiter := middleware.NewRateLimiter(ctx, rate.Limit(cfg.Orders.RateLimit), cfg.Orders.RateBurst)

	r := router.NewRouter(catalogController, orderController, orderLimiter, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shut down", err)
	}

	logger.Info("Server stopped successfully")
}
