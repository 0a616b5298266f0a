package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-bot/internal/api/http"
	"github.com/spec-kit/support-bot/internal/api/http/handlers"
	"github.com/spec-kit/support-bot/internal/api/telegram"
	"github.com/spec-kit/support-bot/internal/auth"
	"github.com/spec-kit/support-bot/internal/bot"
	"github.com/spec-kit/support-bot/internal/config"
	"github.com/spec-kit/support-bot/internal/events"
	"github.com/spec-kit/support-bot/internal/llm"
	"github.com/spec-kit/support-bot/internal/observability"
	"github.com/spec-kit/support-bot/internal/persistence"
	"github.com/spec-kit/support-bot/internal/repository"
	"github.com/spec-kit/support-bot/internal/service"
	"github.com/spec-kit/support-bot/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var sessionRepo repository.SessionRepository
	if redis.Client != nil {
		sessionRepo = repository.NewRedisSessionRepository(redis.Client, cfg.Redis.SessionTTL())
	} else {
		sessionRepo = repository.NewMemorySessionRepository()
	}

	var ticketRepo repository.TicketRepository
	if pg.PoolHandle() != nil {
		ticketRepo = repository.NewTicketRepository(pg.PoolHandle())
	} else {
		ticketRepo = repository.NewMemoryTicketRepository()
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	if cfg.AI.APIKey == "" {
		logger.Warn("AI_API_KEY not provided; consultations will report the assistant as unavailable")
	}
	aiClient := llm.NewOpenAI(cfg.AI)

	botService := bot.NewService(bot.Dependencies{
		SessionRepo: sessionRepo,
		TicketRepo:  ticketRepo,
		AIClient:    aiClient,
		Dispatcher:  dispatcher,
		Logger:      logger,
	}, cfg.AI)

	if cfg.Telegram.Token == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN is required")
	}
	tgBot, err := telegram.New(cfg.Telegram, botService, logger)
	if err != nil {
		logger.Fatal("failed to init telegram bot", zap.Error(err))
	}

	notificationService := service.NewNotificationService(dispatcher, logger, tgBot)
	worker.StartNotificationWorker(notificationService)

	ticketService := service.NewTicketService(ticketRepo, dispatcher)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokens)

	var operatorHash string
	if cfg.Auth.OperatorPassword != "" {
		operatorHash, err = auth.HashPassword(cfg.Auth.OperatorPassword, cfg.Auth.BcryptCost)
		if err != nil {
			logger.Fatal("failed to hash operator password", zap.Error(err))
		}
	} else {
		logger.Warn("AUTH_OPERATOR_PASSWORD not provided; operator login disabled")
	}

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(tokens, cfg.Auth.OperatorName, operatorHash),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	go tgBot.Start(ctx)
	logger.Info("bot started", zap.String("addr", cfg.App.Addr()))

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
