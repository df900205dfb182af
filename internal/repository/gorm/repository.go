package gormrepository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"roundsync/internal/models"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var roundUpdateColumns = []string{
	"status",
	"closing_price",
	"resolution_price",
	"result",
	"up_bets",
	"down_bets",
	"prize_pool",
	"up_bets_pool",
	"down_bets_pool",
	"created_at",
	"closed_at",
	"resolved_at",
	"last_seen_at",
	"raw_json",
}

func (s *Store) UpsertRounds(ctx context.Context, items []models.Round) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chain"}, {Name: "round_id"}},
		DoUpdates: clause.AssignmentColumns(roundUpdateColumns),
	}).Create(&items).Error
}

func (s *Store) UpsertRound(ctx context.Context, item *models.Round) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chain"}, {Name: "round_id"}},
		DoUpdates: clause.AssignmentColumns(roundUpdateColumns),
	}).Create(item).Error
}

func (s *Store) DeleteRoundsBelow(ctx context.Context, chain string, minRoundID int64) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("chain = ?", chain).
		Where("round_id < ?", minRoundID).
		Delete(&models.Round{})
	return res.RowsAffected, res.Error
}

func (s *Store) ListRounds(ctx context.Context, chain string, limit int) ([]models.Round, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Round{})
	if chain != "" {
		query = query.Where("chain = ?", chain)
	}
	var items []models.Round
	if err := query.Order("round_id desc").Limit(normalizeLimit(limit, 50)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

var lotteryRoundUpdateColumns = []string{
	"status",
	"ticket_price",
	"total_tickets_sold",
	"prize_pool",
	"created_at",
	"closed_at",
	"last_seen_at",
	"raw_json",
}

func (s *Store) UpsertLotteryRounds(ctx context.Context, items []models.LotteryRound) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(lotteryRoundUpdateColumns),
	}).Create(&items).Error
}

func (s *Store) UpsertLotteryRound(ctx context.Context, item *models.LotteryRound) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(lotteryRoundUpdateColumns),
	}).Create(item).Error
}

func (s *Store) DeleteLotteryRoundsBelow(ctx context.Context, minRoundID int64) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("id < ?", minRoundID).
		Delete(&models.LotteryRound{})
	return res.RowsAffected, res.Error
}

func (s *Store) ListLotteryRounds(ctx context.Context, limit int) ([]models.LotteryRound, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.LotteryRound
	if err := s.db.WithContext(ctx).
		Model(&models.LotteryRound{}).
		Order("id desc").
		Limit(normalizeLimit(limit, 50)).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

var winnerConflict = clause.OnConflict{
	Columns: []clause.Column{
		{Name: "round_id"},
		{Name: "ticket_number"},
		{Name: "source_chain_id"},
	},
	DoUpdates: clause.AssignmentColumns([]string{"prize_amount"}),
}

func (s *Store) UpsertLotteryWinners(ctx context.Context, items []models.LotteryWinner) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(winnerConflict).Create(&items).Error
}

func (s *Store) UpsertLotteryWinner(ctx context.Context, item *models.LotteryWinner) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(winnerConflict).Create(item).Error
}

func (s *Store) ListLotteryWinners(ctx context.Context, roundID int64) ([]models.LotteryWinner, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.LotteryWinner
	if err := s.db.WithContext(ctx).
		Model(&models.LotteryWinner{}).
		Where("round_id = ?", roundID).
		Order("ticket_number asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetSyncState(ctx context.Context, scope string) (*models.SyncState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var state models.SyncState
	err := s.db.WithContext(ctx).
		Where("scope = ?", scope).
		First(&state).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (s *Store) SaveSyncState(ctx context.Context, state *models.SyncState) error {
	if s == nil || s.db == nil || state == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "scope"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"last_success_at",
			"last_attempt_at",
			"last_error",
			"stats_json",
		}),
	}).Create(state).Error
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}
