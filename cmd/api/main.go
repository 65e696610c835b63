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

	"github.com/joho/godotenv"
	"github.com/zatekoja/priorcare/internal/adapters/cache"
	"github.com/zatekoja/priorcare/internal/adapters/database"
	"github.com/zatekoja/priorcare/internal/adapters/events"
	"github.com/zatekoja/priorcare/internal/adapters/memory"
	"github.com/zatekoja/priorcare/internal/api/handlers"
	"github.com/zatekoja/priorcare/internal/api/routes"
	"github.com/zatekoja/priorcare/internal/application/services"
	"github.com/zatekoja/priorcare/internal/domain/providers"
	"github.com/zatekoja/priorcare/internal/domain/repositories"
	"github.com/zatekoja/priorcare/internal/infrastructure/clients/openai"
	"github.com/zatekoja/priorcare/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/priorcare/internal/infrastructure/clients/redis"
	"github.com/zatekoja/priorcare/internal/infrastructure/observability"
	"github.com/zatekoja/priorcare/pkg/config"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.App.Env, cfg.App.LogLevel)
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize the appointment store
	var (
		appointmentRepo repositories.AppointmentRepository
		clinicRepo      repositories.ClinicRepository
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		appointmentRepo = memory.NewAppointmentStore()
		clinicRepo = memory.NewClinicStore()
		logger.Warn().Msg("using in-memory store; appointments are lost on restart")
	default:
		pgClient, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
		}
		defer pgClient.Close()

		if err := database.EnsureSchema(ctx, pgClient); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply database schema")
		}
		appointmentRepo = database.NewAppointmentAdapter(pgClient, metrics)
		clinicRepo = database.NewClinicAdapter(pgClient)
	}

	// Initialize Redis client
	var (
		cacheProvider providers.CacheProvider
		eventBus      providers.EventBus
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			// Continue without Redis; the queue is derived from the store on every read
			logger.Warn().Err(err).Msg("failed to initialize Redis client")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient, metrics)
			eventBus = events.NewRedisEventBus(redisClient)
		}
	}
	if eventBus == nil {
		eventBus = events.NewMemoryEventBus()
		logger.Info().Msg("using in-process event bus")
	}

	// Initialize the triage classifier
	var assessmentProvider providers.TriageAssessmentProvider
	if cfg.OpenAI.APIKey == "" {
		logger.Warn().Msg("OPENAI_API_KEY is not set; triage uses keyword fallback only")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialize OpenAI client")
		} else {
			assessmentProvider = openaiClient
		}
	}
	classifier := services.NewTriageClassifier(assessmentProvider, cfg.Triage.ClassifyTimeout)

	// Initialize services
	appointmentService := services.NewAppointmentService(appointmentRepo, classifier)
	appointmentService.SetEventBus(eventBus)

	var invalidationService *services.QueueCacheInvalidationService
	if cacheProvider != nil {
		appointmentService.SetQueueCache(cacheProvider, cfg.Triage.QueueCacheTTL)
		invalidationService = services.NewQueueCacheInvalidationService(appointmentService, eventBus)
		if err := invalidationService.Start(); err != nil {
			logger.Warn().Err(err).Msg("failed to start queue cache invalidation service")
			invalidationService = nil
		}
	}

	clinicService := services.NewClinicService(clinicRepo)

	// Set up router
	router := routes.NewRouter(
		handlers.NewAppointmentHandler(appointmentService),
		handlers.NewClinicHandler(clinicService),
		cfg.Server.AllowedOrigins,
		metrics,
	)

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", serverAddr).Str("store", cfg.Store.Driver).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	if err := eventBus.Close(); err != nil {
		logger.Error().Err(err).Msg("error closing event bus")
	}

	if invalidationService != nil {
		invalidationService.Stop()
	}

	logger.Info().Msg("server stopped")
}
