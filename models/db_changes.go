package models

import (
	"time"
)

const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
)

// DBChange is an outbox row written in the same transaction as the change it
// describes. The change monitor drains unprocessed rows in ChangedAt order.
type DBChange struct {
	ID         uint      `gorm:"primaryKey"`
	TableName  string    `gorm:"type:varchar(50);not null;index:idx_table_action"`
	RecordID   int64     `gorm:"not null"`
	ActionType string    `gorm:"type:varchar(10);not null;index:idx_table_action"`
	ChangedAt  time.Time `gorm:"autoCreateTime;not null"`
	Processed  bool      `gorm:"default:false;index:idx_processed"`
}
