package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"roundsync/internal/client/linera"
	"roundsync/internal/config"
	"roundsync/internal/logger"
	"roundsync/internal/service"
)

// chaininit is a one-shot bootstrap for freshly deployed prediction
// applications; it exits non-zero if any chain fails so deployment scripts
// can retry.
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

	initializer := &service.ChainInitializer{
		Client:            chainClient,
		Logger:            logger,
		LeaderboardChains: cfg.ChainInit.LeaderboardChains,
		MicrobetAppID:     cfg.ChainInit.MicrobetAppID,
		SeedClosingPrice:  cfg.ChainInit.SeedClosingPrice,
		MutationDelay:     cfg.Orchestrator.MutationDelay,
	}

	ctx := context.Background()
	failed := 0
	for _, chain := range cfg.Prediction {
		if err := initializer.InitChain(ctx, chain.Name, chain.Endpoint); err != nil {
			logger.Error("chain init failed",
				zap.String("chain", chain.Name),
				zap.String("endpoint", chain.Endpoint),
				zap.Error(err),
			)
			failed++
			continue
		}
	}
	if failed > 0 {
		logger.Error("chain init incomplete", zap.Int("failed", failed))
		os.Exit(1)
	}
	logger.Info("all chains initialized", zap.Int("chains", len(cfg.Prediction)))
}
