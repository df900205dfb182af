package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type SyncFunc func(context.Context) error

// SyncRunner serializes sync runs and coalesces triggers. Trigger is safe to
// call from any goroutine (notification callbacks, cron); while a run is
// in-flight at most one follow-up is queued, so a burst of N triggers yields
// exactly one more run, and the store sees at most one writer per runner.
type SyncRunner struct {
	name   string
	fn     SyncFunc
	logger *zap.Logger
	kick   chan struct{}
}

func NewSyncRunner(name string, fn SyncFunc, logger *zap.Logger) *SyncRunner {
	return &SyncRunner{
		name:   name,
		fn:     fn,
		logger: logger,
		kick:   make(chan struct{}, 1),
	}
}

// Trigger requests a run. Fire-and-forget: if a run is already queued the
// trigger is absorbed, which is correct because every run re-fetches full
// chain state.
func (r *SyncRunner) Trigger() {
	if r == nil {
		return
	}
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

func (r *SyncRunner) Run(ctx context.Context) error {
	if r == nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.kick:
		}
		start := time.Now()
		err := r.fn(ctx)
		if r.logger != nil {
			if err != nil {
				r.logger.Error("sync run failed",
					zap.String("runner", r.name),
					zap.Duration("duration", time.Since(start)),
					zap.Error(err),
				)
			} else {
				r.logger.Debug("sync run complete",
					zap.String("runner", r.name),
					zap.Duration("duration", time.Since(start)),
				)
			}
		}
	}
}
