package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-reservations/database"
	"github.com/yeremiapane/restaurant-reservations/models"
	"github.com/yeremiapane/restaurant-reservations/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", ":", "_", "#", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// failUpdatesOn makes every UPDATE against table fail, to prove the
// surrounding transaction rolls back.
func failUpdatesOn(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	err := db.Callback().Update().Before("gorm:update").Register("test:fail_"+table, func(d *gorm.DB) {
		if d.Statement.Table == table {
			_ = d.AddError(errors.New("forced failure on " + table))
		}
	})
	require.NoError(t, err)
}

func seedReservation(t *testing.T, db *gorm.DB, people int, status string) models.Reservation {
	t.Helper()
	r := models.Reservation{
		FirstName:       "Anthony",
		LastName:        "Charboneau",
		MobileNumber:    "(620) 646-8897",
		ReservationDate: "2030-03-08",
		ReservationTime: "20:00",
		People:          people,
		Status:          status,
	}
	require.NoError(t, db.Create(&r).Error)
	return r
}

func seedTable(t *testing.T, db *gorm.DB, name string, capacity int, reservationID *uint) models.Table {
	t.Helper()
	table := models.Table{TableName: name, Capacity: capacity, ReservationID: reservationID}
	require.NoError(t, db.Create(&table).Error)
	return table
}

func countChanges(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.DBChange{}).Where("table_name = ?", table).Count(&n).Error)
	return n
}

// recordingCache counts calls so tests can see which dates were invalidated.
type recordingCache struct {
	mu          sync.Mutex
	entries     map[string][]models.Reservation
	invalidated []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[string][]models.Reservation{}}
}

func (c *recordingCache) Get(_ context.Context, date string) ([]models.Reservation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[date]
	return r, ok
}

func (c *recordingCache) Set(_ context.Context, date string, reservations []models.Reservation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[date] = reservations
}

func (c *recordingCache) Invalidate(_ context.Context, dates ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range dates {
		delete(c.entries, d)
		c.invalidated = append(c.invalidated, d)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []FloorEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event FloorEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }
