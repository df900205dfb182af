package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"roundsync/internal/client/linera"
	"roundsync/internal/models"
)

// TicketBot buys one batch of tickets per lottery round, keeping the prize
// pool non-trivial even with no human players online. It remembers the last
// round it bought into so re-running the check is idempotent.
type TicketBot struct {
	Endpoint     string
	Client       *linera.Client
	Logger       *zap.Logger
	Owner        string
	TargetChain  string
	TargetOwner  string
	TicketAmount string

	lastProcessed int64
}

// RunOnce buys into the newest ACTIVE round if it has not already. Intended
// to be driven through a SyncRunner so triggers coalesce and purchases never
// overlap.
func (b *TicketBot) RunOnce(ctx context.Context) error {
	rounds := b.Client.AllLotteryRounds(ctx, b.Endpoint)
	var target int64
	found := false
	for _, r := range rounds {
		if normalizeStatus(r.Status) != models.StatusActive {
			continue
		}
		if !found || r.ID > target {
			target = r.ID
			found = true
		}
	}
	if !found || target <= b.lastProcessed {
		return nil
	}
	start := time.Now()
	err := b.Client.PurchaseTickets(ctx, b.Endpoint, b.Owner, b.TicketAmount, b.TargetChain, b.TargetOwner)
	if err != nil {
		if b.Logger != nil {
			b.Logger.Warn("ticket purchase failed",
				zap.Int64("round_id", target),
				zap.Error(err),
			)
		}
		return err
	}
	b.lastProcessed = target
	if b.Logger != nil {
		b.Logger.Info("tickets purchased",
			zap.Int64("round_id", target),
			zap.String("amount", b.TicketAmount),
			zap.Duration("duration", time.Since(start)),
		)
	}
	return nil
}
