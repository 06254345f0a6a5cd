package models

import (
	"time"

	"gorm.io/datatypes"
)

// RawSourceSnapshot keeps the untransformed payload of one source fetch so
// upstream shape changes can be diagnosed after the fact.
type RawSourceSnapshot struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement"`
	Source    string         `gorm:"type:varchar(50);not null;index"`
	ItemCount int            `gorm:"not null;default:0"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	FetchedAt time.Time      `gorm:"type:timestamptz;not null;index"`
}

func (RawSourceSnapshot) TableName() string {
	return "raw_source_snapshots"
}
