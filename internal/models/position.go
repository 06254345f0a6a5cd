package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PositionStatusOpen   = "open"
	PositionStatusClosed = "closed"
)

type Position struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       string `gorm:"type:varchar(100);not null;index" json:"user_id"`
	SourceWallet string `gorm:"type:varchar(64);not null;index" json:"source_wallet"`

	InputToken   string          `gorm:"type:varchar(64);not null" json:"input_token"`
	OutputToken  string          `gorm:"type:varchar(64);not null" json:"output_token"`
	InputAmount  decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0" json:"input_amount"`
	OutputAmount decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0" json:"output_amount"`

	Status      string           `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	RealizedPnL *decimal.Decimal `gorm:"column:realized_pnl;type:numeric(30,10)" json:"realized_pnl"`

	OpenedAt time.Time  `gorm:"type:timestamptz;not null" json:"opened_at"`
	ClosedAt *time.Time `gorm:"type:timestamptz" json:"closed_at"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}
