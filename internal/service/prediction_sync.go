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

// PredictionSyncService mirrors one prediction application's rounds into the
// row store. The chain is the source of truth: every run re-fetches full
// state and overwrites by primary key, so overlapping runs converge.
type PredictionSyncService struct {
	Chain      string
	Endpoint   string
	Client     *linera.Client
	Repo       repository.RoundRepository
	Logger     *zap.Logger
	KeepRounds int
}

func (s *PredictionSyncService) SyncOnce(ctx context.Context) error {
	start := time.Now()
	rounds := s.Client.AllPredictionRounds(ctx, s.Endpoint)
	now := time.Now().UTC()

	keep := s.KeepRounds
	if keep <= 0 {
		keep = 10
	}
	items := make([]models.Round, 0, len(rounds))
	ids := make([]int64, 0, len(rounds))
	for _, r := range rounds {
		items = append(items, mapPredictionRound(s.Chain, r, now))
		ids = append(ids, r.ID)
	}
	if len(items) > keep {
		byID := make(map[int64]models.Round, len(items))
		for _, it := range items {
			byID[it.RoundID] = it
		}
		items = items[:0]
		for _, id := range newestFirst(ids)[:keep] {
			items = append(items, byID[id])
		}
	}

	upserted, err := s.upsertRounds(ctx, items)
	s.trim(ctx, items)
	s.recordState(ctx, now, len(rounds), upserted, err)
	if s.Logger != nil {
		s.Logger.Info("prediction sync complete",
			zap.String("chain", s.Chain),
			zap.Int("fetched", len(rounds)),
			zap.Int("upserted", upserted),
			zap.Duration("duration", time.Since(start)),
		)
	}
	return err
}

// upsertRounds writes the batch in one statement; if that fails, each row is
// retried alone so one malformed round cannot block the rest.
func (s *PredictionSyncService) upsertRounds(ctx context.Context, items []models.Round) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if err := s.Repo.UpsertRounds(ctx, items); err == nil {
		return len(items), nil
	} else if s.Logger != nil {
		s.Logger.Warn("batch upsert failed, falling back to per-row",
			zap.String("chain", s.Chain),
			zap.Error(err),
		)
	}
	upserted := 0
	var lastErr error
	for i := range items {
		if err := s.Repo.UpsertRound(ctx, &items[i]); err != nil {
			lastErr = err
			if s.Logger != nil {
				s.Logger.Error("round upsert failed",
					zap.String("chain", s.Chain),
					zap.Int64("round_id", items[i].RoundID),
					zap.Error(err),
				)
			}
			continue
		}
		upserted++
	}
	return upserted, lastErr
}

func (s *PredictionSyncService) trim(ctx context.Context, kept []models.Round) {
	if len(kept) == 0 {
		return
	}
	min := kept[0].RoundID
	for _, it := range kept {
		if it.RoundID < min {
			min = it.RoundID
		}
	}
	if _, err := s.Repo.DeleteRoundsBelow(ctx, s.Chain, min); err != nil && s.Logger != nil {
		s.Logger.Warn("round cleanup failed",
			zap.String("chain", s.Chain),
			zap.Error(err),
		)
	}
}

func (s *PredictionSyncService) recordState(ctx context.Context, at time.Time, fetched, upserted int, runErr error) {
	stats, _ := json.Marshal(map[string]any{
		"fetched":  fetched,
		"upserted": upserted,
	})
	state := &models.SyncState{
		Scope:         "prediction:" + s.Chain,
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
		s.Logger.Warn("sync state save failed", zap.String("chain", s.Chain), zap.Error(err))
	}
}
