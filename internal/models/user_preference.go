package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PrefCurrencyMode = "display.currency_mode"

	CurrencyModeUSD    = "usd"
	CurrencyModeNative = "native"
)

type UserPreference struct {
	UserID string         `gorm:"primaryKey;type:varchar(100)" json:"user_id"`
	Key    string         `gorm:"primaryKey;type:varchar(100)" json:"key"`
	Value  datatypes.JSON `gorm:"type:jsonb;not null" json:"value"`

	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}
