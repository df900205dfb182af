package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Round lifecycle labels as reported by the chain. Transitions are strictly
// forward; the chain is trusted as ground truth and rows are overwritten
// with whatever the latest fetch reports.
const (
	StatusActive   = "ACTIVE"
	StatusClosed   = "CLOSED"
	StatusDrawing  = "DRAWING"
	StatusResolved = "RESOLVED"
	StatusComplete = "COMPLETE"
)

type Round struct {
	Chain           string           `gorm:"primaryKey;type:text;comment:来源链标识"`
	RoundID         int64            `gorm:"primaryKey;comment:链上轮次ID"`
	Status          string           `gorm:"type:text;index;not null;comment:轮次状态"`
	ClosingPrice    *decimal.Decimal `gorm:"type:numeric(30,10);comment:封盘价格"`
	ResolutionPrice *decimal.Decimal `gorm:"type:numeric(30,10);comment:结算价格"`
	Result          *string          `gorm:"type:text;comment:涨跌结果"`
	UpBets          int64            `gorm:"not null;comment:看涨注数"`
	DownBets        int64            `gorm:"not null;comment:看跌注数"`
	PrizePool       decimal.Decimal  `gorm:"type:numeric(30,10);not null;comment:总奖池"`
	UpBetsPool      decimal.Decimal  `gorm:"type:numeric(30,10);not null;comment:看涨奖池"`
	DownBetsPool    decimal.Decimal  `gorm:"type:numeric(30,10);not null;comment:看跌奖池"`
	// autoCreateTime is disabled: this is the chain's timestamp, not ours.
	// A missing or unparseable chain value must stay NULL instead of being
	// filled with local insert time by the gorm field-name convention.
	CreatedAt       *time.Time       `gorm:"type:timestamptz;autoCreateTime:false;comment:链上创建时间"`
	ClosedAt        *time.Time       `gorm:"type:timestamptz;comment:封盘时间"`
	ResolvedAt      *time.Time       `gorm:"type:timestamptz;comment:结算时间"`
	LastSeenAt      time.Time        `gorm:"type:timestamptz;not null;comment:最近同步时间"`
	RawJSON         datatypes.JSON   `gorm:"type:jsonb;comment:原始数据"`
}

func (Round) TableName() string {
	return "rounds"
}
