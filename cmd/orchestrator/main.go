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
	"roundsync/internal/logger"
	"roundsync/internal/pricefeed"
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

	chainHTTP := &http.Client{Timeout: cfg.Chain.Timeout}
	chainClient := &linera.Client{HTTP: chainHTTP, Logger: logger}
	prices := &pricefeed.Client{
		HTTP:           &http.Client{Timeout: cfg.PriceFeed.Timeout},
		Logger:         logger,
		BaseURL:        cfg.PriceFeed.BaseURL,
		Symbols:        cfg.PriceFeed.Symbols,
		FallbackPrices: cfg.PriceFeed.FallbackPrices,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Notifications shorten the lottery wait loop; the orchestrator works
	// without them, they just turn polling into push.
	notify := make(chan struct{}, 1)
	if wsURL, err := linera.WSURLFromEndpoint(cfg.Lottery.Endpoint); err != nil {
		logger.Warn("cannot derive lottery ws url, orchestrator will poll", zap.Error(err))
	} else if chainID, err := linera.ChainIDFromEndpoint(cfg.Lottery.Endpoint); err != nil {
		logger.Warn("cannot derive lottery chain id, orchestrator will poll", zap.Error(err))
	} else {
		stream := linera.NewNotificationStream(linera.NotificationStreamOptions{
			URL:     wsURL,
			ChainID: chainID,
			Logger:  logger.With(zap.String("stream", "lottery")),
		})
		go func() {
			err := stream.Run(ctx, func() {
				select {
				case notify <- struct{}{}:
				default:
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("lottery notification stream stopped", zap.Error(err))
			}
		}()
	}

	lottery := &service.LotteryOrchestrator{
		Endpoint:      cfg.Lottery.Endpoint,
		Client:        chainClient,
		Logger:        logger,
		CycleInterval: cfg.Orchestrator.CycleInterval,
		WaitTimeout:   cfg.Orchestrator.WaitTimeout,
		DrawInterval:  cfg.Orchestrator.DrawInterval,
		Notify:        notify,
	}
	go func() {
		if err := lottery.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("lottery orchestrator stopped", zap.Error(err))
		}
	}()

	for _, chain := range cfg.Prediction {
		pred := &service.PredictionOrchestrator{
			Chain:         chain.Name,
			Endpoint:      chain.Endpoint,
			Client:        chainClient,
			Prices:        prices,
			Logger:        logger,
			CycleInterval: cfg.Orchestrator.CycleInterval,
			MutationDelay: cfg.Orchestrator.MutationDelay,
		}
		go func() {
			if err := pred.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("prediction orchestrator stopped",
					zap.String("chain", pred.Chain),
					zap.Error(err),
				)
			}
		}()
	}

	logger.Info("orchestrator running",
		zap.Int("prediction_chains", len(cfg.Prediction)),
		zap.String("lottery_endpoint", cfg.Lottery.Endpoint),
	)
	<-ctx.Done()
	logger.Info("shutdown requested")
}
