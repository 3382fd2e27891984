package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jarvis-integrations-layer/internal/application"
	"jarvis-integrations-layer/internal/application/webhook_handlers"
	"jarvis-integrations-layer/internal/config"
	"jarvis-integrations-layer/internal/infrastructure/api"
	"jarvis-integrations-layer/internal/infrastructure/assistant"
	"jarvis-integrations-layer/internal/infrastructure/metrics"
	"jarvis-integrations-layer/internal/infrastructure/oauth"
	"jarvis-integrations-layer/internal/infrastructure/providers"
	"jarvis-integrations-layer/internal/infrastructure/pubsub"
	"jarvis-integrations-layer/internal/infrastructure/repository"
	"jarvis-integrations-layer/internal/infrastructure/statestore"
	healthsync "jarvis-integrations-layer/internal/infrastructure/sync"
	"jarvis-integrations-layer/internal/infrastructure/webhook"
	"jarvis-integrations-layer/internal/ports"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("No .env file found, using process environment")
	}
	if os.Getenv("LOG_PRETTY") == "true" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping MongoDB")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()
	db := mongoClient.Database(cfg.MongoDB)

	stateStore, err := statestore.NewRedisStore(cfg.RedisURL, cfg.StateTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer stateStore.Close()

	promRegistry := prometheus.NewRegistry()
	m := metrics.New(promRegistry)

	registry := providers.NewRegistry(cfg.SiteURL)
	integrationRepo := repository.NewMongoIntegrationRepository(db)
	requestRepo := repository.NewMongoRequestRepository(db)
	exchanger := oauth.NewExchanger(logger)

	var syncTrigger ports.SyncTrigger
	var forwarder webhook_handlers.HealthForwarder
	if cfg.HealthSyncURL != "" {
		hs := healthsync.NewHealthSync(cfg.HealthSyncURL, cfg.HealthSyncToken, logger)
		syncTrigger = hs
		forwarder = hs
	}

	assistantClient := assistant.NewClient(cfg.AssistantBackendURL, cfg.AssistantToken, logger)

	eventPubSub := pubsub.NewEventPubSub(logger)

	oauthService := application.NewOAuthService(registry, stateStore, exchanger, integrationRepo, syncTrigger, m, cfg.BackfillDays, logger)
	integrationService := application.NewIntegrationService(integrationRepo, registry, exchanger, m, logger)
	completionService := application.NewCompletionService(requestRepo, assistantClient, eventPubSub, m, logger)

	dispatcher := application.NewWebhookDispatcher(eventPubSub, m, logger)
	dispatcher.RegisterHandler(webhook_handlers.NewFitbitRevocationHandler(integrationRepo, logger))
	if forwarder != nil {
		dispatcher.RegisterHandler(webhook_handlers.NewFitbitDataHandler(forwarder, logger))
		dispatcher.RegisterHandler(webhook_handlers.NewOuraDataHandler(forwarder, logger))
	}

	fitbitVerifier := webhook.NewFitbitVerifier(cfg.FitbitClientSecret, cfg.FitbitVerificationCode)
	ouraVerifier := webhook.NewOuraVerifier(cfg.OuraWebhookSecret, cfg.OuraVerificationToken)

	router := api.NewRouter(api.RouterConfig{
		OAuth:        api.NewOAuthHandlers(oauthService, completionService, logger),
		Webhooks:     api.NewWebhookHandlers(fitbitVerifier, ouraVerifier, dispatcher, m, logger),
		Integrations: api.NewIntegrationHandlers(integrationService, registry, logger),
		Requests:     api.NewRequestHandlers(completionService, logger),
		CORSOrigin:   cfg.CORSOrigin,
		Healthz: func() map[string]interface{} {
			return map[string]interface{}{
				"pubsub": eventPubSub.GetStats(),
				"redis":  stateStore.Ping(context.Background()) == nil,
			}
		},
	})

	router.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("Integration layer listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
