package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dosewise/dosewise/internal/ai"
	"github.com/dosewise/dosewise/internal/config"
	"github.com/dosewise/dosewise/internal/handler"
	"github.com/dosewise/dosewise/internal/kvstore"
	"github.com/dosewise/dosewise/internal/metrics"
	"github.com/dosewise/dosewise/internal/middleware"
	"github.com/dosewise/dosewise/internal/notify"
	"github.com/dosewise/dosewise/internal/pdf"
	"github.com/dosewise/dosewise/internal/poller"
	"github.com/dosewise/dosewise/internal/repository"
	"github.com/dosewise/dosewise/internal/service"
	"github.com/dosewise/dosewise/internal/snooze"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env if present; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	var logger *zap.Logger
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
	)

	ctx := context.Background()

	// Initialize the persistence backend
	var store kvstore.Store
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("Failed to ping database", zap.Error(err))
		}

		pgStore := kvstore.NewPostgresStore(pool, logger)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to ensure database schema", zap.Error(err))
		}
		store = pgStore
		logger.Info("Successfully connected to database")
	default:
		store = kvstore.NewMemoryStore()
		logger.Warn("Using in-memory storage, state will not survive restarts")
	}

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(ctx, store, logger)
	medicationRepo := repository.NewMedicationRepository(ctx, store, logger)
	logRepo := repository.NewLogRepository(ctx, store, logger)
	healthDataRepo := repository.NewHealthDataRepository(ctx, store, logger)

	snoozeRegistry := snooze.NewRegistry(logger)
	appMetrics := metrics.New(nil)

	// Reminder delivery
	var notifier notify.Notifier
	if cfg.Notifier.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notifier.WebhookURL, cfg.Notifier.Timeout, logger)
		logger.Info("Reminders will be delivered via webhook")
	} else {
		notifier = notify.NewLogNotifier(logger)
	}

	// Initialize services
	profileService := service.NewProfileService(profileRepo, logger)
	medicationService := service.NewMedicationService(medicationRepo, logger)
	doseService := service.NewDoseService(medicationRepo, logRepo, snoozeRegistry, notifier, appMetrics, logger)
	healthDataService := service.NewHealthDataService(healthDataRepo, logger)

	if err := profileService.EnsureDefault(ctx); err != nil {
		logger.Fatal("Failed to ensure default profile", zap.Error(err))
	}

	// Initialize the optional AI assistant
	var assistant *ai.Assistant
	if cfg.AIEnabled() {
		aiClient, err := ai.NewClient(cfg.OpenAI.Endpoint, cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
		if err != nil {
			logger.Fatal("Failed to initialize AI client", zap.Error(err))
		}
		assistant = ai.NewAssistant(aiClient, logger)
		logger.Info("AI assistant enabled", zap.String("model", cfg.OpenAI.Model))
	} else {
		logger.Info("AI assistant disabled, no API key configured")
	}

	pdfGenerator := pdf.NewGenerator(logger)
	reportService := service.NewReportService(profileRepo, medicationRepo, logRepo, pdfGenerator, assistant, logger)

	// Start the reminder poller
	pollerCtx, stopPoller := context.WithCancel(ctx)
	defer stopPoller()

	reminderPoller := poller.New(
		medicationRepo,
		profileRepo,
		logRepo,
		snoozeRegistry,
		notifier,
		appMetrics,
		cfg.Poller.Interval,
		logger,
	)
	go reminderPoller.Run(pollerCtx)

	// Initialize handlers
	profileHandler := handler.NewProfileHandler(profileService, logger)
	medicationHandler := handler.NewMedicationHandler(medicationService, logger)
	doseHandler := handler.NewDoseHandler(doseService, logger)
	healthHandler := handler.NewHealthDataHandler(healthDataService, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.ErrorLogging(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/profiles", profileHandler.List)
		v1.POST("/profiles", profileHandler.Create)
		v1.PUT("/profiles/:id", profileHandler.Update)
		v1.DELETE("/profiles/:id", profileHandler.Delete)

		v1.GET("/medications", medicationHandler.List)
		v1.POST("/medications", medicationHandler.Create)
		v1.GET("/medications/:id", medicationHandler.Get)
		v1.PUT("/medications/:id", medicationHandler.Update)
		v1.DELETE("/medications/:id", medicationHandler.Delete)
		v1.POST("/medications/:id/refill", medicationHandler.Refill)

		v1.GET("/doses", doseHandler.List)
		v1.POST("/doses", doseHandler.Log)
		v1.POST("/doses/snooze", doseHandler.Snooze)
		v1.GET("/doses/next", doseHandler.Next)

		v1.GET("/vitals", healthHandler.ListVitals)
		v1.POST("/vitals", healthHandler.CreateVital)
		v1.DELETE("/vitals/:id", healthHandler.DeleteVital)

		v1.GET("/appointments", healthHandler.ListAppointments)
		v1.POST("/appointments", healthHandler.CreateAppointment)
		v1.DELETE("/appointments/:id", healthHandler.DeleteAppointment)

		v1.GET("/moods", healthHandler.ListMoods)
		v1.POST("/moods", healthHandler.CreateMood)
		v1.DELETE("/moods/:id", healthHandler.DeleteMood)

		v1.POST("/reports/adherence", reportHandler.Adherence)

		if assistant != nil {
			assistHandler := handler.NewAssistHandler(assistant, medicationService, logger)
			v1.POST("/assist/parse-schedule", assistHandler.ParseSchedule)
			v1.POST("/assist/interactions", assistHandler.CheckInteractions)
			v1.POST("/assist/pharmacies", assistHandler.SuggestPharmacies)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopPoller()

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
