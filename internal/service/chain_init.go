package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"roundsync/internal/client/linera"
)

// ChainInitializer bootstraps a freshly deployed prediction application:
// wires its leaderboard chain and microbet application references, then seeds
// the round history so the first real cycle starts from a known state.
type ChainInitializer struct {
	Client *linera.Client
	Logger *zap.Logger

	// LeaderboardChains maps a prediction chain name to the leaderboard
	// chain ID it should report to. Chains without an entry are skipped.
	LeaderboardChains map[string]string
	MicrobetAppID     string
	SeedClosingPrice  string
	MutationDelay     time.Duration
}

// InitChain runs the one-time setup for one prediction endpoint. Each step
// is independent on-chain, so a failure stops the sequence rather than
// leaving later steps pointing at missing state.
func (ci *ChainInitializer) InitChain(ctx context.Context, chain, endpoint string) error {
	delay := ci.MutationDelay
	if delay <= 0 {
		delay = 400 * time.Millisecond
	}

	if leaderboard := ci.LeaderboardChains[chain]; leaderboard != "" {
		if err := ci.Client.SetLeaderboardChainID(ctx, endpoint, leaderboard); err != nil {
			return err
		}
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
	} else if ci.Logger != nil {
		ci.Logger.Warn("no leaderboard chain configured, skipping", zap.String("chain", chain))
	}

	if ci.MicrobetAppID != "" {
		if err := ci.Client.SetMicrobetAppID(ctx, endpoint, ci.MicrobetAppID); err != nil {
			return err
		}
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
	}

	if err := ci.Client.CreateRound(ctx, endpoint); err != nil {
		return err
	}
	if err := sleepCtx(ctx, delay); err != nil {
		return err
	}
	seed := ci.SeedClosingPrice
	if seed == "" {
		seed = "1"
	}
	if err := ci.Client.CloseRound(ctx, endpoint, seed); err != nil {
		return err
	}
	if ci.Logger != nil {
		ci.Logger.Info("chain initialized", zap.String("chain", chain), zap.String("endpoint", endpoint))
	}
	return nil
}
