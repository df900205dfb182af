package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"roundsync/internal/client/linera"
	"roundsync/internal/config"
	cronrunner "roundsync/internal/cron"
	"roundsync/internal/logger"
	"roundsync/internal/service"
)

func main() {
	cfgPath := os.Getenv("RS_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("RS_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.TicketBot.Endpoint == "" || cfg.TicketBot.Owner == "" {
		logger.Fatal("ticket_bot.endpoint and ticket_bot.owner are required")
	}

	chainHTTP := &http.Client{Timeout: cfg.Chain.Timeout}
	chainClient := &linera.Client{HTTP: chainHTTP, Logger: logger}

	bot := &service.TicketBot{
		Endpoint:     cfg.TicketBot.Endpoint,
		Client:       chainClient,
		Logger:       logger,
		Owner:        cfg.TicketBot.Owner,
		TargetChain:  cfg.TicketBot.TargetChain,
		TargetOwner:  cfg.TicketBot.TargetOwner,
		TicketAmount: cfg.TicketBot.TicketAmount,
	}
	runner := service.NewSyncRunner("ticket-bot", bot.RunOnce, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("ticket bot runner stopped", zap.Error(err))
		}
	}()
	runner.Trigger()

	if wsURL, err := linera.WSURLFromEndpoint(cfg.TicketBot.Endpoint); err != nil {
		logger.Warn("cannot derive ws url, relying on cron only", zap.Error(err))
	} else if chainID, err := linera.ChainIDFromEndpoint(cfg.TicketBot.Endpoint); err != nil {
		logger.Warn("cannot derive chain id, relying on cron only", zap.Error(err))
	} else {
		stream := linera.NewNotificationStream(linera.NotificationStreamOptions{
			URL:     wsURL,
			ChainID: chainID,
			Logger:  logger.With(zap.String("stream", "ticket-bot")),
		})
		go func() {
			if err := stream.Run(ctx, runner.Trigger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("notification stream stopped", zap.Error(err))
			}
		}()
	}

	cronRunner := cronrunner.New(logger, ctx)
	if _, err := cronRunner.Add(cfg.Sync.SafetyInterval, func(context.Context) {
		runner.Trigger()
	}); err != nil {
		logger.Warn("cron register failed", zap.Error(err))
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	logger.Info("ticket bot running", zap.String("endpoint", cfg.TicketBot.Endpoint))
	<-ctx.Done()
	logger.Info("shutdown requested")
}
