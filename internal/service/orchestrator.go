package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"roundsync/internal/client/linera"
	"roundsync/internal/models"
)

// LotteryOrchestrator drives the lottery round lifecycle on-chain: close the
// open round, wait for it to report CLOSED, draw winners until COMPLETE,
// sleep out the cycle. Failures are logged and the loop moves on; a skipped
// cycle just makes the next cycle's close the effective trigger.
type LotteryOrchestrator struct {
	Endpoint string
	Client   *linera.Client
	Logger   *zap.Logger

	CycleInterval time.Duration
	WaitTimeout   time.Duration
	DrawInterval  time.Duration

	// Notify carries chain notification signals; when nil the wait loop
	// falls back to plain polling.
	Notify <-chan struct{}
}

func (o *LotteryOrchestrator) Run(ctx context.Context) error {
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
		if o.Logger != nil {
			o.Logger.Info("lottery cycle done, sleeping", zap.Duration("sleep", remainder))
		}
		if err := sleepCtx(ctx, remainder); err != nil {
			return err
		}
	}
}

func (o *LotteryOrchestrator) runCycle(ctx context.Context) {
	if err := o.Client.CloseLotteryRound(ctx, o.Endpoint); err != nil {
		// Retried implicitly next cycle; closing with no open round is a
		// chain-side no-op anyway.
		if o.Logger != nil {
			o.Logger.Warn("closeLotteryRound failed", zap.String("endpoint", o.Endpoint), zap.Error(err))
		}
	}

	roundID, ok := o.waitForClosedRound(ctx)
	if !ok {
		if o.Logger != nil {
			o.Logger.Info("no closed round this cycle")
		}
		return
	}
	if o.Logger != nil {
		o.Logger.Info("closed round found", zap.Int64("round_id", roundID))
	}
	o.drawUntilComplete(ctx, roundID)
}

// waitForClosedRound checks immediately, then re-checks on each notification
// (or a poll tick when no notification channel is wired) until WaitTimeout,
// with one final check at the deadline. Timeout means "no new information
// yet", not failure.
func (o *LotteryOrchestrator) waitForClosedRound(ctx context.Context) (int64, bool) {
	if id, ok := o.latestClosed(ctx); ok {
		return id, true
	}
	timeout := o.WaitTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	poll := time.NewTicker(5 * time.Second)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0, false
		case <-deadline.C:
			return o.latestClosed(ctx)
		case <-o.Notify:
		case <-poll.C:
		}
		if id, ok := o.latestClosed(ctx); ok {
			return id, true
		}
	}
}

func (o *LotteryOrchestrator) latestClosed(ctx context.Context) (int64, bool) {
	rounds := o.Client.AllLotteryRounds(ctx, o.Endpoint)
	var id int64
	found := false
	for _, r := range rounds {
		if normalizeStatus(r.Status) != models.StatusClosed {
			continue
		}
		if !found || r.ID > id {
			id = r.ID
			found = true
		}
	}
	return id, found
}

func (o *LotteryOrchestrator) roundComplete(ctx context.Context, roundID int64) bool {
	for _, r := range o.Client.AllLotteryRounds(ctx, o.Endpoint) {
		if r.ID == roundID {
			return normalizeStatus(r.Status) == models.StatusComplete
		}
	}
	return false
}

func (o *LotteryOrchestrator) drawUntilComplete(ctx context.Context, roundID int64) {
	interval := o.DrawInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	for {
		if ctx.Err() != nil {
			return
		}
		if o.roundComplete(ctx, roundID) {
			if o.Logger != nil {
				o.Logger.Info("round complete", zap.Int64("round_id", roundID))
			}
			return
		}
		if err := o.Client.GenerateWinner(ctx, o.Endpoint, roundID); err != nil && o.Logger != nil {
			o.Logger.Warn("generateWinner failed",
				zap.Int64("round_id", roundID),
				zap.Error(err),
			)
		}
		if err := sleepCtx(ctx, interval); err != nil {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
