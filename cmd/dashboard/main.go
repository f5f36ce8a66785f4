package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kahwadash/internal/config"
	"kahwadash/internal/dashboard"
	"kahwadash/internal/domain"
	"kahwadash/internal/events"
	"kahwadash/internal/export"
	"kahwadash/internal/google"
	"kahwadash/internal/logging"
	"kahwadash/internal/metrics"
	"kahwadash/internal/notify"
	"kahwadash/internal/orderapi"
	"kahwadash/internal/session"
	"kahwadash/internal/web"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	gate := initGate(cfg, redisClient, &logger)
	client := orderapi.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, &logger)
	exporter := initSheetsExporter(cfg, &logger)

	bus := events.NewEventBus()
	wireTelegramNotifications(cfg, bus, &logger)

	dash := dashboard.NewService(client, events.NewPublisher(bus), &logger)

	srv := web.NewServer(cfg, gate, dash, client, exporter, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)

	return serve(ctx, srv, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "dashboard-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := session.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with in-memory sessions")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initGate builds the session store chain. With redis available sessions
// survive restarts; the in-memory store backs it up during outages.
func initGate(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) *session.Gate {
	memStore := session.NewMemoryStore(cfg.Auth.SessionTTL)

	var store domain.SessionStore = memStore
	if redisClient != nil {
		redisStore := session.NewRedisStore(redisClient, cfg.Auth.SessionTTL)
		store = session.NewFailoverStore(redisStore, memStore, logger)
	}

	return session.NewGate(cfg.Auth.ManagerPassword, store, logger)
}

// wireTelegramNotifications subscribes the managers chat to status-change
// events. Without a bot token the bus simply has no consumers.
func wireTelegramNotifications(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ManagersChatID == 0 {
		return
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}

	notifier := notify.NewTelegramNotifier(bot, cfg.Telegram.ManagersChatID, logger)
	bus.Subscribe(events.EventOrderStatusChanged, func(event *events.Event) error {
		payload, err := events.DecodeOrderStatus(event)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return notifier.OrderStatusChanged(ctx, payload.OrderShortID, payload.Status)
	})

	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifications enabled")
}

func initSheetsExporter(cfg *config.Config, logger *zerolog.Logger) *export.SheetsExporter {
	if cfg.Google.CredentialsFile == "" || cfg.Google.OrdersSpreadsheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(cfg.Google.CredentialsFile, cfg.Google.OrdersSpreadsheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets export")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return export.NewSheetsExporter(sheetsService, export.RetryPolicy{}, logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func serve(ctx context.Context, srv *web.Server, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info().Int("port", cfg.Server.Port).Msg("dashboard server started")

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}

	logger.Info().Msg("dashboard server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
