package repository

import (
	"context"

	"roundsync/internal/models"
)

// RoundRepository is the only writer of the mirrored row store. Every write
// is an upsert by primary key: applying the same fetched chain state twice
// must be a no-op.
type RoundRepository interface {
	UpsertRounds(ctx context.Context, items []models.Round) error
	UpsertRound(ctx context.Context, item *models.Round) error
	DeleteRoundsBelow(ctx context.Context, chain string, minRoundID int64) (int64, error)
	ListRounds(ctx context.Context, chain string, limit int) ([]models.Round, error)

	UpsertLotteryRounds(ctx context.Context, items []models.LotteryRound) error
	UpsertLotteryRound(ctx context.Context, item *models.LotteryRound) error
	DeleteLotteryRoundsBelow(ctx context.Context, minRoundID int64) (int64, error)
	ListLotteryRounds(ctx context.Context, limit int) ([]models.LotteryRound, error)

	UpsertLotteryWinners(ctx context.Context, items []models.LotteryWinner) error
	UpsertLotteryWinner(ctx context.Context, item *models.LotteryWinner) error
	ListLotteryWinners(ctx context.Context, roundID int64) ([]models.LotteryWinner, error)

	GetSyncState(ctx context.Context, scope string) (*models.SyncState, error)
	SaveSyncState(ctx context.Context, state *models.SyncState) error
}
