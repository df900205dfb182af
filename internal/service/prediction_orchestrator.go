package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"roundsync/internal/client/linera"
	"roundsync/internal/pricefeed"
)

// PredictionOrchestrator advances one prediction chain each cycle: close the
// open round at the feed's current price, resolve it, open the next round.
// The short delay between mutations gives the chain time to apply each
// state change before the next one lands.
type PredictionOrchestrator struct {
	Chain    string
	Endpoint string
	Client   *linera.Client
	Prices   *pricefeed.Client
	Logger   *zap.Logger

	CycleInterval time.Duration
	MutationDelay time.Duration
}

func (o *PredictionOrchestrator) Run(ctx context.Context) error {
	cycle := o.CycleInterval
	if cycle <= 0 {
		cycle = 5 * time.Minute
	}
	for {
		start := time.Now()
		o.runCycle(ctx)
		remainder := cycle - time.Since(start)
		if remainder < time.Second {
			remainder = time.Second
		}
		if err := sleepCtx(ctx, remainder); err != nil {
			return err
		}
	}
}

func (o *PredictionOrchestrator) runCycle(ctx context.Context) {
	delay := o.MutationDelay
	if delay <= 0 {
		delay = 400 * time.Millisecond
	}

	price := o.Prices.ClosingPrice(ctx, o.Chain)
	if err := o.Client.CloseRound(ctx, o.Endpoint, price.String()); err != nil {
		if o.Logger != nil {
			o.Logger.Warn("closeRound failed",
				zap.String("chain", o.Chain),
				zap.String("closing_price", price.String()),
				zap.Error(err),
			)
		}
		return
	}
	if err := sleepCtx(ctx, delay); err != nil {
		return
	}
	if err := o.Client.ResolveRound(ctx, o.Endpoint); err != nil && o.Logger != nil {
		o.Logger.Warn("resolveRound failed", zap.String("chain", o.Chain), zap.Error(err))
	}
	if err := sleepCtx(ctx, delay); err != nil {
		return
	}
	if err := o.Client.CreateRound(ctx, o.Endpoint); err != nil && o.Logger != nil {
		o.Logger.Warn("createRound failed", zap.String("chain", o.Chain), zap.Error(err))
	}
	if o.Logger != nil {
		o.Logger.Info("prediction cycle done",
			zap.String("chain", o.Chain),
			zap.String("closing_price", price.String()),
		)
	}
}
