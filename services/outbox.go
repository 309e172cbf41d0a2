package services

import (
	"github.com/yeremiapane/restaurant-reservations/models"
	"gorm.io/gorm"
)

// recordChange appends an outbox row inside tx so the change monitor only
// ever sees committed mutations.
func recordChange(tx *gorm.DB, table string, id uint, action string) error {
	return tx.Create(&models.DBChange{
		TableName:  table,
		RecordID:   int64(id),
		ActionType: action,
	}).Error
}
