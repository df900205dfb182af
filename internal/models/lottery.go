package models

import (
	"time"

	"gorm.io/datatypes"
)

// LotteryRound mirrors one chain-side lottery round. Ticket price and prize
// pool stay text: the chain reports them as decimal strings and the row
// store schema expects a stable type run over run.
type LotteryRound struct {
	ID               int64          `gorm:"primaryKey;comment:链上轮次ID"`
	Status           string         `gorm:"type:text;index;not null;comment:轮次状态"`
	TicketPrice      string         `gorm:"type:text;not null;comment:单张票价"`
	TotalTicketsSold int64          `gorm:"not null;comment:已售票数"`
	PrizePool        string         `gorm:"type:text;not null;comment:奖池金额"`
	// Chain-side timestamp; autoCreateTime disabled so NULL stays NULL.
	CreatedAt        *time.Time     `gorm:"type:timestamptz;autoCreateTime:false;comment:链上创建时间"`
	ClosedAt         *time.Time     `gorm:"type:timestamptz;comment:封盘时间"`
	LastSeenAt       time.Time      `gorm:"type:timestamptz;not null;comment:最近同步时间"`
	RawJSON          datatypes.JSON `gorm:"type:jsonb;comment:原始数据"`
}

func (LotteryRound) TableName() string {
	return "lottery_rounds"
}

// LotteryWinner is keyed by the composite (round, ticket, source chain):
// the chain may report the same winner across consecutive polls and the
// key absorbs the duplicates on upsert.
type LotteryWinner struct {
	RoundID       int64     `gorm:"primaryKey;comment:链上轮次ID"`
	TicketNumber  string    `gorm:"primaryKey;type:text;comment:中奖票号"`
	SourceChainID string    `gorm:"primaryKey;type:text;comment:购票来源链"`
	PrizeAmount   string    `gorm:"type:text;not null;comment:奖金金额"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null;comment:写入时间"`
}

func (LotteryWinner) TableName() string {
	return "lottery_winners"
}
