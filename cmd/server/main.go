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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roadwatch/service-navigation/internal/application"
	"github.com/roadwatch/service-navigation/internal/config"
	"github.com/roadwatch/service-navigation/internal/directions"
	hazardDomain "github.com/roadwatch/service-navigation/internal/domain/hazard"
	navEvents "github.com/roadwatch/service-navigation/internal/events"
	"github.com/roadwatch/service-navigation/internal/handler"
	"github.com/roadwatch/service-navigation/internal/navigation"
	"github.com/roadwatch/service-navigation/internal/platform/auth"
	"github.com/roadwatch/service-navigation/internal/platform/database"
	"github.com/roadwatch/service-navigation/internal/platform/health"
	"github.com/roadwatch/service-navigation/internal/platform/kafka"
	"github.com/roadwatch/service-navigation/internal/platform/logger"
	"github.com/roadwatch/service-navigation/internal/platform/middleware"
	"github.com/roadwatch/service-navigation/internal/repository"
	"github.com/roadwatch/service-navigation/internal/storage"
)

const (
	serviceName     = "service-navigation"
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("service-navigation failed", zap.Error(err))
	}
	log.Info("service-navigation stopped")
}

func run(cfg *config.ServiceConfig, log *zap.Logger) error {
	log.Info("starting service-navigation", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.HazardModel{},
			&repository.PhotoModel{},
			&repository.RouteModel{},
			&repository.HistoryEntryModel{},
			&repository.TripRecordModel{},
		); err != nil {
			return fmt.Errorf("failed to run auto-migration: %w", err)
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.AccessTTL, cfg.JWTConfig.RefreshTTL)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Photo storage
	photoStore, err := storage.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.PublicPrefix, cfg.Uploads.MaxBytes)
	if err != nil {
		return fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	// Initialize repositories
	hazardRepo := repository.NewGormHazardRepository(db)
	photoRepo := repository.NewGormPhotoRepository(db)
	routeRepo := repository.NewGormRouteRepository(db)
	historyRepo := repository.NewGormHistoryRepository(db)
	tripRepo := repository.NewGormTripRepository(db)

	// Initialize application services
	hazardService := application.NewHazardService(
		hazardRepo,
		photoStore,
		hazardDomain.NewStandardAdvisoryPolicy(),
		kafkaProducer,
		log,
	)
	photoService := application.NewPhotoService(photoRepo, hazardRepo, photoStore, log)
	routeService := application.NewRouteService(routeRepo, hazardRepo, log)
	historyService := application.NewHistoryService(historyRepo, tripRepo, log)
	mapService := application.NewMapService(cfg.Map)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	directionsClient := directions.NewOSRMClient(cfg.Directions.BaseURL, cfg.Directions.Profile, cfg.Directions.Timeout, log)
	navigationService := application.NewNavigationService(
		routeRepo,
		historyService,
		navigation.NewSessionManager(context.WithoutCancel(ctx)),
		navigation.NewRenderer(directionsClient, log),
		simulatorConfig(cfg.Navigation),
		kafkaProducer,
		log,
	)

	// Moderation consumer
	groupID := cfg.Kafka.GroupPrefix + "navigation-service"
	moderationConsumer := navEvents.NewModerationEventConsumer(cfg.Kafka.Brokers, groupID, hazardService, log)
	defer func() { _ = moderationConsumer.Close() }()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.MaxMultipartMemory = cfg.Uploads.MaxBytes

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	health.NewHandler(db, serviceName).RegisterRoutes(router)

	// Serve stored photos
	router.Static(photoStore.Prefix(), photoStore.Dir())

	// Register routes
	api := &router.RouterGroup
	handler.NewMapHandler(mapService).RegisterRoutes(api)
	handler.NewHazardHandler(hazardService).RegisterRoutes(api, jwtManager)
	handler.NewPhotoHandler(photoService).RegisterRoutes(api, jwtManager)
	handler.NewRouteHandler(routeService).RegisterRoutes(api, jwtManager)
	handler.NewHistoryHandler(historyService).RegisterRoutes(api, jwtManager)
	handler.NewNavigationHandler(navigationService, log).RegisterRoutes(api, jwtManager)
	handler.NewAdminHazardHandler(hazardService).RegisterRoutes(api, jwtManager)

	// Create HTTP server. No write timeout: telemetry streams stay open for
	// the whole trip.
	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("starting moderation event consumer")
		if err := moderationConsumer.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("moderation event consumer error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down service-navigation...")

		// Stop simulators first so finished trips are persisted while the
		// database is still reachable.
		navigationService.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server forced shutdown", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}

func simulatorConfig(c config.NavigationConfig) navigation.Config {
	return navigation.Config{
		Interval:           c.TickInterval,
		ProgressStep:       c.ProgressStep,
		TotalDistance:      c.TotalDistance,
		MinSpeedKmh:        c.MinSpeedKmh,
		MaxSpeedKmh:        c.MaxSpeedKmh,
		ProximityThreshold: c.ProximityThreshold,
	}
}
