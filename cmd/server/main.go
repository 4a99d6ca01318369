// @title           Kouji Photo Backend API
// @version         1.0.0
// @description     Backend API for construction photo management and MLIT electronic delivery packages (PHOTO.XML, INDEX_D.XML, PIC folder).

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"kouji-photo-backend/docs"
	"kouji-photo-backend/internal/config"
	"kouji-photo-backend/internal/database"
	"kouji-photo-backend/internal/delivery"
	"kouji-photo-backend/internal/handlers"
	"kouji-photo-backend/internal/logging"
	"kouji-photo-backend/internal/middleware"
	"kouji-photo-backend/internal/services"
	"kouji-photo-backend/internal/supabase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closeLog, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		if baseURL, err := url.Parse(cfg.BaseURL); err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var deps services.ExportServiceDeps
	var photoRepo services.PhotoRepository
	var photoStore services.PhotoStore
	var events services.EventPublisher
	healthChecks := map[string]handlers.HealthCheck{}

	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set; photo catalog and export history are disabled")
	} else {
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("database unavailable; photo catalog and export history are disabled", "error", err)
		} else {
			defer db.Close()
			healthChecks["database"] = db.PingContext
			if err := database.NewMigrator(db, logger).Run(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			dbClient := supabase.NewDatabaseClient(db)
			photoRepo = dbClient
			deps.Photos = dbClient
			deps.Exports = dbClient
		}
	}

	if cfg.SupabaseEnabled() {
		supabaseClient, err := supabase.NewClient(cfg)
		if err != nil {
			return err
		}
		storageClient := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabasePhotoBucket, cfg.SupabaseExportBucket)
		realtimeClient := supabase.NewRealtimeClient(cfg.SupabaseURL, cfg.SupabaseServiceKey)

		photoStore = storageClient
		events = realtimeClient
		deps.Catalog = supabaseClient
		deps.Store = storageClient
		deps.Archives = storageClient
		deps.Events = realtimeClient
	} else {
		logger.Warn("SUPABASE_URL not set; storage, project defaults and realtime events are disabled")
	}

	validator := delivery.NewValidator(cfg.ExportMaxPhotosWarning, cfg.ExportMinJPEGQuality)
	exportService := services.NewExportService(validator, deps, services.ExportOptions{
		FetchMissingPhotos: cfg.ExportFetchMissingPhotos,
		ArchiveUpload:      cfg.ExportArchiveUpload,
	}, logger)
	photoService := services.NewPhotoService(photoRepo, photoStore, events, logger)

	exportHandler := handlers.NewExportHandler(exportService, logger)
	photosHandler := handlers.NewPhotosHandler(photoService, cfg.MaxUploadBytes, logger)

	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(gin.Recovery())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check (no auth)
	router.GET("/health", handlers.NewHealthHandler(healthChecks))

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))

	// Electronic delivery
	api.POST("/projects/:project_id/export/electronic-delivery", exportHandler.Export)
	api.PUT("/projects/:project_id/export/electronic-delivery", exportHandler.Validate)
	api.GET("/projects/:project_id/exports", exportHandler.ListExports)
	api.GET("/projects/:project_id/exports/:export_id/download", exportHandler.DownloadExport)

	// Photo catalog
	api.POST("/projects/:project_id/photos", photosHandler.Upload)
	api.GET("/projects/:project_id/photos", photosHandler.List)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

