package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TradeStatusPending   = "pending"
	TradeStatusExecuted  = "executed"
	TradeStatusExpired   = "expired"
	TradeStatusDismissed = "dismissed"
)

// PendingTrade is a suggested mirror trade awaiting user action. They are
// ephemeral: once ExpiresAt passes the sweeper flips them to expired.
type PendingTrade struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       string `gorm:"type:varchar(100);not null;index" json:"user_id"`
	SourceWallet string `gorm:"type:varchar(64);not null;index" json:"source_wallet"`

	InputToken      string          `gorm:"type:varchar(64);not null" json:"input_token"`
	OutputToken     string          `gorm:"type:varchar(64);not null" json:"output_token"`
	SuggestedAmount decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0" json:"suggested_amount"`

	Status    string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ExpiresAt time.Time `gorm:"type:timestamptz;not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
}

func (PendingTrade) TableName() string {
	return "pending_trades"
}
