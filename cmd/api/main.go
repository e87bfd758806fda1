package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/quantumvibe/booking-assistant/internal/api/router"
	appconfig "github.com/quantumvibe/booking-assistant/internal/config"
	"github.com/quantumvibe/booking-assistant/internal/conversation"
	"github.com/quantumvibe/booking-assistant/internal/events"
	"github.com/quantumvibe/booking-assistant/internal/notify"
	"github.com/quantumvibe/booking-assistant/internal/observability/metrics"
	"github.com/quantumvibe/booking-assistant/internal/reservations"
	"github.com/quantumvibe/booking-assistant/internal/schedule"
	"github.com/quantumvibe/booking-assistant/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reservation storage. Postgres when DATABASE_URL is set, in-memory otherwise.
	var (
		repo   reservations.Repository
		outbox events.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = reservations.NewPostgresRepository(pool)
		outbox = events.NewPostgresOutbox(pool)
		logger.Info("using postgres reservation store")
	} else {
		repo = reservations.NewInMemoryRepository()
		outbox = events.NewMemoryOutbox()
		logger.Warn("DATABASE_URL not set; reservations are in-memory and lost on restart")
	}

	// Conversation sessions. Redis when configured, in-memory otherwise.
	var store conversation.SessionStore
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		store = conversation.NewRedisSessionStore(redisClient, cfg.SessionTTL)
		logger.Info("using redis session store", "addr", cfg.RedisAddr)
	} else {
		mem := conversation.NewMemorySessionStore(cfg.SessionTTL)
		mem.StartSweeper(ctx, time.Hour)
		store = mem
		logger.Warn("REDIS_ADDR not set; conversation sessions are in-memory")
	}

	calendar := schedule.New(repo, schedule.Config{
		AllowSameDay:  cfg.AllowSameDayBooking,
		LookaheadDays: cfg.LookaheadDays,
		MaxDates:      cfg.MaxDatesShown,
	})
	bookingSvc := reservations.NewService(repo, calendar, outbox, cfg.RequireEmail, logger)

	llm := conversation.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel, logger)
	if cfg.GroqAPIKey == "" {
		logger.Warn("GROQ_API_KEY not set; open conversation is disabled, booking dialog still works")
	}

	chatMetrics := metrics.NewChatMetrics(nil)
	flow := conversation.NewFlow(bookingSvc, logger)
	chatSvc := conversation.NewService(store, flow, llm, chatMetrics, logger)

	// Confirmation emails ride the outbox so a commit never blocks on SendGrid.
	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
	} else {
		sender = notify.NewStubEmailSender(logger)
		logger.Warn("SENDGRID_API_KEY not set; confirmation emails are logged only")
	}
	deliverer := events.NewDeliverer(outbox, notify.NewService(sender, logger), logger)
	go deliverer.Start(ctx)

	routerCfg := &router.Config{
		Logger:              logger,
		ChatHandler:         conversation.NewHandler(chatSvc, logger),
		ReservationsHandler: reservations.NewHandler(bookingSvc, logger),
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		ChatRatePerSecond:   cfg.ChatRatePerSecond,
		ChatBurst:           cfg.ChatBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	deliverer.Drain(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
