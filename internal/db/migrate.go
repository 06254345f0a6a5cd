package db

import (
	"copydesk/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.CopyConfig{},
		&models.PendingTrade{},
		&models.Position{},
		&models.UserPreference{},
		&models.RawSourceSnapshot{},
	)
}
