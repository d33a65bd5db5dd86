package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"relay-service/internal/archive"
	"relay-service/internal/config"
	"relay-service/internal/db"
	"relay-service/internal/handlers"
	"relay-service/internal/middleware"
	"relay-service/internal/observability"
	"relay-service/internal/platform"
	"relay-service/internal/rabbitmq"
	"relay-service/internal/relay"
	"relay-service/internal/repositories"
	"relay-service/internal/retention"
	"relay-service/internal/telemetry"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when loading settings.")
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTel.Endpoint, cfg.OTel.ServiceName)
	if err != nil {
		log.Warn().Err(err).Msg("Tracing disabled.")
		shutdownTracing = func(context.Context) error { return nil }
	}

	database, err := db.Connect(cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connecting to the database.")
	}
	defer database.Close()

	var archiver archive.Archiver = archive.Noop{}
	var payloads archive.Reader = archive.Noop{}
	if cfg.Archive.Path != "" {
		store, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Archive.Path).Msg("An error occurred when opening the payload archive.")
		}
		defer store.Close()
		archiver = store
		payloads = store
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	defer publisher.Close()
	log.Info().
		Str("mode", rabbitmq.PublisherMode(publisher)).
		Str("reason", rabbitmq.PublisherNoopReason(publisher)).
		Msg("Event publisher ready.")
	emitter := telemetry.NewEventEmitter(publisher, "relay", cfg.OTel.ServiceName, cfg.Environment)

	client, err := platform.NewTelegram(cfg.Telegram.APIURL, cfg.Telegram.Token, cfg.Telegram.BotID, cfg.Platform.Timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connecting to the Bot API.")
	}
	log.Info().Int64("bot_id", client.BotID()).Msg("Bot API client ready.")

	transmissionRepo := repositories.NewTransmissionRepo(database)
	topicRepo := repositories.NewTopicRepo(database)
	chatRepo := repositories.NewChatRepo(database)

	engine := relay.New(relay.Stores{
		Transmissions: transmissionRepo,
		Topics:        topicRepo,
		Subtopics:     topicRepo,
		Allogroomings: repositories.NewAllogroomingRepo(database),
		Chats:         chatRepo,
	}, client, archiver, emitter, relay.Options{
		SilentBroadcasts:   cfg.Relay.SilentBroadcasts,
		FanoutWorkers:      cfg.Relay.FanoutWorkers,
		RateLimitPerSecond: cfg.Relay.RateLimitPerSecond,
		RateLimitBurst:     cfg.Relay.RateLimitBurst,
		Language:           cfg.Relay.Language,
	})

	scheduler := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	if err := retention.Schedule(scheduler, cfg.Retention.Schedule, retention.NewJob(transmissionRepo, cfg.Retention.SupersededAfter)); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when scheduling retention.")
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(cfg.OTel.ServiceName), observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		if err := database.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	webhook := handlers.NewWebhookHandler(engine)
	router.POST("/webhook", middleware.WebhookSecret(cfg.Telegram.WebhookSecret), webhook.Receive)

	if cfg.Admin.Token != "" {
		chatHandler := handlers.NewChatHandler(chatRepo, client.BotID())
		admin := router.Group("/admin", middleware.AdminAuth(cfg.Admin.Token))
		admin.GET("/chats/:chat_id", chatHandler.GetChat)
		admin.PUT("/chats/:chat_id/authorization", chatHandler.SetAuthorization)
		admin.GET("/recipients", chatHandler.ListRecipients)
	}
	handlers.RegisterDebugRoutes(router, transmissionRepo, payloads, cfg.Debug.Routes)

	server := &http.Server{Addr: cfg.Bind, Handler: router}
	go func() {
		log.Info().Str("bind", cfg.Bind).Msg("Relay service started.")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("An error occurred when serving HTTP.")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server did not shut down cleanly.")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Tracer provider did not shut down cleanly.")
	}
}

func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if !cfg.Log.Pretty {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	if level > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
}
