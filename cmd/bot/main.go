package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/djenggot/orderbot/internal/api/router"
	"github.com/djenggot/orderbot/internal/bot"
	"github.com/djenggot/orderbot/internal/channels/whatsapp"
	appconfig "github.com/djenggot/orderbot/internal/config"
	"github.com/djenggot/orderbot/internal/feed"
	"github.com/djenggot/orderbot/internal/notify"
	"github.com/djenggot/orderbot/internal/observability/metrics"
	"github.com/djenggot/orderbot/internal/order"
	"github.com/djenggot/orderbot/internal/session"
	"github.com/djenggot/orderbot/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel, cfg.Env)
	logger.Info("starting orderbot",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	repo := order.NewRepository(pool)
	index := notify.NewLatestOrderIndex(repo, logger.Component("index"))

	sessions := buildSessionStore(ctx, cfg, logger)

	loc, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		logger.Warn("unknown display timezone, using UTC", "tz", cfg.DisplayTimezone)
		loc = time.UTC
	}

	waClient, err := whatsapp.NewClient(whatsapp.ClientConfig{
		BaseURL:       cfg.WhatsAppAPIBaseURL,
		AccessToken:   cfg.WhatsAppAccessToken,
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		Logger:        logger.Component("whatsapp"),
	})
	if err != nil {
		logger.Error("failed to build whatsapp client", "error", err)
		os.Exit(1)
	}

	botMetrics := metrics.NewBotMetrics(nil)

	dispatcher := bot.New(bot.Config{
		Messenger:        waClient,
		Orders:           repo,
		Sessions:         sessions,
		Index:            index,
		Logger:           logger.Component("dispatcher"),
		Metrics:          botMetrics,
		Location:         loc,
		InboundQueueSize: cfg.InboundQueueSize,
		FeedQueueSize:    cfg.FeedQueueSize,
	})

	webhook := whatsapp.NewWebhookHandler(
		cfg.WhatsAppVerifyToken,
		cfg.WhatsAppAppSecret,
		func(m whatsapp.ParsedInboundMessage) bool {
			return dispatcher.EnqueueInbound(bot.InboundMessage{
				SenderID: m.SenderID,
				IsGroup:  m.IsGroup,
				Body:     m.Body,
			})
		},
		logger.Component("webhook"),
	)

	r := router.New(&router.Config{
		Logger:          logger,
		WhatsAppWebhook: webhook,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go dispatcher.Run(ctx)

	// LISTEN is issued before the bootstrap scan runs, so no change slips
	// through the gap between scan and subscription.
	listener := feed.NewListener(pool, cfg.FeedRetryDelay, logger.Component("feed"))
	go func() {
		if err := listener.Run(ctx, index.Bootstrap, func(e feed.Event) {
			_ = dispatcher.DeliverEvent(ctx, e)
		}); err != nil && !feed.IsCancellation(err) {
			logger.Error("feed listener stopped", "error", err)
		}
	}()

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("orderbot stopped")
}

func buildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) session.Store {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis not available, falling back to in-memory sessions", "error", err)
		} else {
			logger.Info("using redis session store", "addr", cfg.RedisAddr)
			return session.NewRedisStore(client, cfg.SessionIdleTimeout)
		}
	}

	mem := session.NewMemoryStore(cfg.SessionIdleTimeout)
	go mem.Run(ctx, time.Minute)
	return mem
}
