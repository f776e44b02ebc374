package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jalsetu/notify-worker/internal/api"
	"github.com/jalsetu/notify-worker/internal/broker"
	"github.com/jalsetu/notify-worker/internal/config"
	"github.com/jalsetu/notify-worker/internal/db"
	"github.com/jalsetu/notify-worker/internal/domain"
	"github.com/jalsetu/notify-worker/internal/metrics"
	"github.com/jalsetu/notify-worker/internal/ratelimiter"
	"github.com/jalsetu/notify-worker/internal/realtime"
	"github.com/jalsetu/notify-worker/internal/render"
	"github.com/jalsetu/notify-worker/internal/repository"
	"github.com/jalsetu/notify-worker/internal/sender"
	"github.com/jalsetu/notify-worker/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- broker ----
	// A partially-declared topology would silently drop retries, so any
	// declaration failure aborts startup.
	brk, err := broker.Connect(cfg.AMQPURL, cfg.Prefetch, cfg.RetryDelays, logger)
	if err != nil {
		logger.Fatal("failed to connect to broker", zap.Error(err))
	}
	defer brk.Close()

	// ---- core dependencies ----
	renderer, err := render.New()
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	records := repository.NewPgRecordRepository(pool)

	senders := sender.NewRegistry()
	senders.Register(domain.ChannelEmail, sender.NewEmailSender(sender.EmailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
		LoginURL: cfg.LoginURL,
		Timeout:  cfg.SendTimeout,
	}, renderer))
	senders.Register(domain.ChannelSMS, sender.NewSMSSender(sender.SMSConfig{
		GatewayURL: cfg.SMSGatewayURL,
		Username:   cfg.SMSUsername,
		Password:   cfg.SMSPassword,
		EntityID:   cfg.SMSEntityID,
		Sender:     cfg.SMSSender,
		Timeout:    cfg.SendTimeout,
	}, renderer))
	senders.Register(domain.ChannelPush, sender.NewLogSender(domain.ChannelPush, logger))
	senders.Register(domain.ChannelInApp, sender.NewLogSender(domain.ChannelInApp, logger))

	limiter := ratelimiter.New(cfg.RateLimit)

	var presence worker.PresenceNotifier
	if cfg.RedisAddr != "" {
		rt := realtime.NewRedisNotifier(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rt.Close()
		presence = rt
		logger.Info("presence notifier enabled", zap.String("addr", cfg.RedisAddr))
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	onSent, onRetried, onFailed, onInFlight := m.WorkerHooks()

	policy := worker.NewRetryPolicy(map[domain.Channel]int{
		domain.ChannelEmail: cfg.EmailMaxAttempts,
		domain.ChannelSMS:   cfg.SMSMaxAttempts,
		domain.ChannelPush:  cfg.PushMaxAttempts,
		domain.ChannelInApp: cfg.InAppMaxAttempts,
	}, len(cfg.RetryDelays))

	w := worker.New(brk, brk, records, senders, limiter, presence, policy,
		cfg.SendTimeout, logger, worker.MetricHooks{
			OnSent:     onSent,
			OnRetried:  onRetried,
			OnFailed:   onFailed,
			OnInFlight: onInFlight,
		})

	// ---- worker ----
	// Context for the consume loop; cancelled on shutdown signal.
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := w.Run(workerCtx); err != nil {
			logger.Fatal("worker error", zap.Error(err))
		}
	}()

	// ---- ops HTTP server ----
	router := api.NewRouter(pool, brk, brk, records, policy, cfg.RetryDelays, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("ops server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ops server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop the ops HTTP server.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server shutdown error", zap.Error(err))
	}

	// 2. Stop consuming new messages and let in-flight handlers reach
	//    their terminal ack.
	cancelWorker()
	<-workerDone

	logger.Info("worker stopped cleanly")
}
