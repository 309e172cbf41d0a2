package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yeremiapane/restaurant-reservations/floor"
	"github.com/yeremiapane/restaurant-reservations/models"
	"github.com/yeremiapane/restaurant-reservations/utils"
	"gorm.io/gorm"
)

// ChangeMonitor drains the db_changes outbox: every committed table or
// reservation change is pushed to the floor websocket hub and to the event
// publisher, then marked processed.
type ChangeMonitor struct {
	DB        *gorm.DB
	Publisher EventPublisher
	StopChan  chan struct{}
	Interval  time.Duration
	BatchSize int
}

func NewChangeMonitor(db *gorm.DB, publisher EventPublisher) *ChangeMonitor {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &ChangeMonitor{
		DB:        db,
		Publisher: publisher,
		StopChan:  make(chan struct{}),
		Interval:  1 * time.Second,
		BatchSize: 100,
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := cm.ProcessPending(context.Background()); err != nil {
					utils.ErrorLogger.Printf("change monitor: %v", err)
				}
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.StopChan)
}

// ProcessPending handles one batch of unprocessed changes and returns how many
// were marked processed.
func (cm *ChangeMonitor) ProcessPending(ctx context.Context) (int, error) {
	var changes []models.DBChange
	if err := cm.DB.WithContext(ctx).
		Where("processed = ?", false).
		Order("changed_at ASC").
		Order("id ASC").
		Limit(cm.BatchSize).
		Find(&changes).Error; err != nil {
		return 0, fmt.Errorf("fetch changes: %w", err)
	}
	if len(changes) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(changes))
	for _, change := range changes {
		switch change.TableName {
		case "tables":
			cm.processTableChange(ctx, change)
		case "reservations":
			cm.processReservationChange(ctx, change)
		}
		ids = append(ids, change.ID)
	}

	if err := cm.DB.WithContext(ctx).
		Model(&models.DBChange{}).
		Where("id IN ?", ids).
		Update("processed", true).Error; err != nil {
		return 0, fmt.Errorf("mark changes processed: %w", err)
	}

	utils.InfoLogger.Debugf("Processed %d floor changes", len(ids))
	return len(ids), nil
}

func (cm *ChangeMonitor) processTableChange(ctx context.Context, change models.DBChange) {
	var table models.Table
	if err := cm.DB.WithContext(ctx).First(&table, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching table %d: %v", change.RecordID, err)
		return
	}

	event := floor.EventTableUpdate
	if change.ActionType == models.ActionInsert {
		event = floor.EventTableCreate
	}
	floor.BroadcastMessage(floor.Message{Event: event, Data: table})
	cm.publish(ctx, event, change, table)
}

func (cm *ChangeMonitor) processReservationChange(ctx context.Context, change models.DBChange) {
	var reservation models.Reservation
	if err := cm.DB.WithContext(ctx).First(&reservation, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching reservation %d: %v", change.RecordID, err)
		return
	}

	event := floor.EventReservationUpdate
	if change.ActionType == models.ActionInsert {
		event = floor.EventReservationCreate
	}
	floor.BroadcastMessage(floor.Message{Event: event, Data: reservation})
	cm.publish(ctx, event, change, reservation)
}

func (cm *ChangeMonitor) publish(ctx context.Context, event string, change models.DBChange, data interface{}) {
	err := cm.Publisher.Publish(ctx, FloorEvent{
		Event:      event,
		Entity:     change.TableName,
		RecordID:   change.RecordID,
		Action:     change.ActionType,
		Data:       data,
		OccurredAt: change.ChangedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		utils.ErrorLogger.Printf("Error publishing %s for %s/%d: %v", event, change.TableName, change.RecordID, err)
	}
}
