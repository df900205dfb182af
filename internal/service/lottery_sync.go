package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"roundsync/internal/client/linera"
	"roundsync/internal/models"
	"roundsync/internal/repository"
)

// LotterySyncService mirrors the lottery application's rounds and, for the
// latest actionable round, its resolved winner list. Winner rows are only
// ever upserted by their composite key, never deleted.
type LotterySyncService struct {
	Endpoint   string
	Client     *linera.Client
	Repo       repository.RoundRepository
	Logger     *zap.Logger
	KeepRounds int
}

func (s *LotterySyncService) SyncOnce(ctx context.Context) error {
	start := time.Now()
	rounds := s.Client.AllLotteryRounds(ctx, s.Endpoint)
	now := time.Now().UTC()

	items := make([]models.LotteryRound, 0, len(rounds))
	for _, r := range rounds {
		items = append(items, mapLotteryRound(r, now))
	}

	upserted, err := s.upsertRounds(ctx, items)
	s.trim(ctx, items)

	winners := 0
	targetID, ok := latestActionableRound(rounds)
	if ok {
		winners = s.syncWinners(ctx, targetID, now)
	}

	s.recordState(ctx, now, len(rounds), upserted, winners, err)
	if s.Logger != nil {
		s.Logger.Info("lottery sync complete",
			zap.Int("fetched", len(rounds)),
			zap.Int("upserted", upserted),
			zap.Int("winners", winners),
			zap.Bool("target_found", ok),
			zap.Int64("target_round", targetID),
			zap.Duration("duration", time.Since(start)),
		)
	}
	return err
}

func (s *LotterySyncService) upsertRounds(ctx context.Context, items []models.LotteryRound) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if err := s.Repo.UpsertLotteryRounds(ctx, items); err == nil {
		return len(items), nil
	} else if s.Logger != nil {
		s.Logger.Warn("lottery batch upsert failed, falling back to per-row", zap.Error(err))
	}
	upserted := 0
	var lastErr error
	for i := range items {
		if err := s.Repo.UpsertLotteryRound(ctx, &items[i]); err != nil {
			lastErr = err
			if s.Logger != nil {
				s.Logger.Error("lottery round upsert failed",
					zap.Int64("round_id", items[i].ID),
					zap.Error(err),
				)
			}
			continue
		}
		upserted++
	}
	return upserted, lastErr
}

func (s *LotterySyncService) syncWinners(ctx context.Context, roundID int64, now time.Time) int {
	fetched := s.Client.RoundWinners(ctx, s.Endpoint, roundID)
	if len(fetched) == 0 {
		return 0
	}
	items := make([]models.LotteryWinner, 0, len(fetched))
	for _, w := range fetched {
		items = append(items, mapWinner(roundID, w, now))
	}
	items = dedupeWinners(items)
	if err := s.Repo.UpsertLotteryWinners(ctx, items); err != nil {
		if s.Logger != nil {
			s.Logger.Warn("winner batch upsert failed, falling back to per-row",
				zap.Int64("round_id", roundID),
				zap.Error(err),
			)
		}
		written := 0
		for i := range items {
			if err := s.Repo.UpsertLotteryWinner(ctx, &items[i]); err != nil {
				if s.Logger != nil {
					s.Logger.Error("winner upsert failed",
						zap.Int64("round_id", roundID),
						zap.String("ticket", items[i].TicketNumber),
						zap.Error(err),
					)
				}
				continue
			}
			written++
		}
		return written
	}
	return len(items)
}

func (s *LotterySyncService) trim(ctx context.Context, items []models.LotteryRound) {
	keep := s.KeepRounds
	if keep <= 0 {
		keep = 10
	}
	if len(items) <= keep {
		return
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	min := newestFirst(ids)[keep-1]
	if _, err := s.Repo.DeleteLotteryRoundsBelow(ctx, min); err != nil && s.Logger != nil {
		s.Logger.Warn("lottery round cleanup failed", zap.Error(err))
	}
}

func (s *LotterySyncService) recordState(ctx context.Context, at time.Time, fetched, upserted, winners int, runErr error) {
	stats, _ := json.Marshal(map[string]any{
		"fetched":  fetched,
		"upserted": upserted,
		"winners":  winners,
	})
	state := &models.SyncState{
		Scope:         "lottery",
		LastAttemptAt: &at,
		StatsJSON:     stats,
	}
	if runErr != nil {
		msg := runErr.Error()
		state.LastError = &msg
	} else {
		state.LastSuccessAt = &at
	}
	if err := s.Repo.SaveSyncState(ctx, state); err != nil && s.Logger != nil {
		s.Logger.Warn("sync state save failed", zap.Error(err))
	}
}
