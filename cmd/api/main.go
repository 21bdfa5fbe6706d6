package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	_ "github.com/campushub/classroom-api/api/swagger"
	"github.com/campushub/classroom-api/internal/handler"
	"github.com/campushub/classroom-api/internal/repository"
	"github.com/campushub/classroom-api/internal/router"
	"github.com/campushub/classroom-api/internal/service"
	"github.com/campushub/classroom-api/pkg/cache"
	"github.com/campushub/classroom-api/pkg/config"
	"github.com/campushub/classroom-api/pkg/database"
	"github.com/campushub/classroom-api/pkg/jobs"
	"github.com/campushub/classroom-api/pkg/logger"
	"github.com/campushub/classroom-api/pkg/qr"
	"github.com/campushub/classroom-api/pkg/storage"
)

// @title Classroom Booking API
// @version 1.0.0
// @description Room directory, recurring bookings, availability, incidents, and reports
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	incidentRepo := repository.NewIncidentRepository(db)
	userRepo := repository.NewUserRepository(db)
	reportJobRepo := repository.NewReportJobRepository(db)

	metrics := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			sugar.Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, true)
		}
	}

	location, err := time.LoadLocation(cfg.Availability.Timezone)
	if err != nil {
		sugar.Warnw("unknown availability timezone, falling back to UTC", "timezone", cfg.Availability.Timezone)
		location = time.UTC
	}

	exportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		sugar.Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	validate := validator.New()

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "classroom-api",
	})
	availabilityService := service.NewAvailabilityService(roomRepo, bookingRepo, location, logr)
	roomService := service.NewRoomService(roomRepo, bookingRepo, incidentRepo, cacheService, validate, logr)
	bookingService := service.NewBookingService(bookingRepo, roomRepo, userRepo, cacheService, metrics, validate, logr)
	incidentService := service.NewIncidentService(incidentRepo, roomRepo, userRepo, metrics, validate, logr)
	dashboardService := service.NewDashboardService(roomRepo, bookingRepo, cacheService, cfg.Dashboard.CacheTTL, logr)
	exportService := service.NewExportService(roomRepo, bookingRepo, incidentRepo, logr)

	reportWorker := service.NewReportWorker(reportJobRepo, exportService, exportStore, signer, metrics, cfg.BaseURL, cfg.Reports.WorkerRetries, logr)
	reportQueue := jobs.NewQueue("reports", reportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	reportService := service.NewReportService(reportJobRepo, reportQueue, exportStore, signer, metrics, userRepo, logr, service.ReportServiceConfig{
		BaseURL:         cfg.BaseURL,
		ResultTTL:       cfg.Reports.ResultTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
		MaxRetries:      cfg.Reports.WorkerRetries,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reportQueue.Start(ctx)
	defer reportQueue.Stop()
	reportService.RecoverPendingJobs(ctx)
	reportService.StartCleanup(ctx)

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Availability: handler.NewAvailabilityHandler(availabilityService),
		Rooms:        handler.NewRoomHandler(roomService),
		Bookings:     handler.NewBookingHandler(bookingService),
		Incidents:    handler.NewIncidentHandler(incidentService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		Reports:      handler.NewReportHandler(reportService),
		QR:           handler.NewQRHandler(roomService, qr.NewGenerator(cfg.QR.Size), cfg.BaseURL),
	}

	engine := router.New(cfg, logr, handlers, authService, metrics)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("graceful shutdown failed", "error", err)
	}
}
