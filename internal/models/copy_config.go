package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CopyConfig is one user's mirror-trading setup for a single source wallet.
type CopyConfig struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       string `gorm:"type:varchar(100);not null;index" json:"user_id"`
	SourceWallet string `gorm:"type:varchar(64);not null;index" json:"source_wallet"`

	AllocatedCapital decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0" json:"allocated_capital"`
	Active           bool            `gorm:"not null;default:true;index" json:"active"`
	AutoExecute      bool            `gorm:"not null;default:false" json:"auto_execute"`

	// fixed | proportional | percentage
	SizingMode string `gorm:"type:varchar(20);not null;default:'fixed'" json:"sizing_mode"`

	TotalTrades      int             `gorm:"not null;default:0" json:"total_trades"`
	SuccessfulTrades int             `gorm:"not null;default:0" json:"successful_trades"`
	FailedTrades     int             `gorm:"not null;default:0" json:"failed_trades"`
	TotalPnL         decimal.Decimal `gorm:"column:total_pnl;type:numeric(30,10);not null;default:0" json:"total_pnl"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (CopyConfig) TableName() string {
	return "copy_configs"
}
