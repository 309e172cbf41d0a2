package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/restaurant-reservations/models"
	"gorm.io/gorm"
)

type TableService struct {
	DB    *gorm.DB
	Cache ReservationCache
}

func NewTableService(db *gorm.DB, cache ReservationCache) *TableService {
	if cache == nil {
		cache = NoopReservationCache{}
	}
	return &TableService{DB: db, Cache: cache}
}

// List -> semua meja urut table_name
func (s *TableService) List(ctx context.Context) ([]models.Table, error) {
	tables := []models.Table{}
	if err := s.DB.WithContext(ctx).Order("table_name ASC").Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

func (s *TableService) Read(ctx context.Context, id uint) (*models.Table, error) {
	return readTable(s.DB.WithContext(ctx), id)
}

// Create -> meja baru selalu kosong (reservation_id null)
func (s *TableService) Create(ctx context.Context, name string, capacity int) (*models.Table, error) {
	table := models.Table{TableName: name, Capacity: capacity}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&table).Error; err != nil {
			return err
		}
		return recordChange(tx, "tables", table.ID, models.ActionInsert)
	})
	if err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &table, nil
}

// Seat links a booked reservation to a free table and marks it seated. Both
// rows change in one transaction; any failure rolls back both.
func (s *TableService) Seat(ctx context.Context, tableID, reservationID uint) (*models.Table, error) {
	var table *models.Table
	var reservation models.Reservation

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if table, err = readTable(tx, tableID); err != nil {
			return err
		}
		if err := tx.First(&reservation, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}
		if table.Occupied() {
			return ErrTableOccupied
		}
		if table.Capacity < reservation.People {
			return ErrInsufficientCapacity
		}

		res := tx.Model(&models.Reservation{}).
			Where("reservation_id = ? AND status = ?", reservationID, models.StatusBooked).
			Update("status", models.StatusSeated)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		res = tx.Model(&models.Table{}).
			Where("table_id = ? AND reservation_id IS NULL", tableID).
			Update("reservation_id", reservationID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTableOccupied
		}

		if err := recordChange(tx, "reservations", reservationID, models.ActionUpdate); err != nil {
			return err
		}
		if err := recordChange(tx, "tables", tableID, models.ActionUpdate); err != nil {
			return err
		}

		table, err = readTable(tx, tableID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Cache.Invalidate(ctx, reservation.ReservationDate)
	return table, nil
}

// Finish frees an occupied table and marks its reservation finished in one
// transaction.
func (s *TableService) Finish(ctx context.Context, tableID uint) (*models.Table, error) {
	var table *models.Table
	var reservation models.Reservation

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if table, err = readTable(tx, tableID); err != nil {
			return err
		}
		if !table.Occupied() {
			return ErrTableNotOccupied
		}
		reservationID := *table.ReservationID

		if err := tx.First(&reservation, reservationID).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Reservation{}).
			Where("reservation_id = ?", reservationID).
			Update("status", models.StatusFinished).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Table{}).
			Where("table_id = ? AND reservation_id = ?", tableID, reservationID).
			Update("reservation_id", nil)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTableNotOccupied
		}

		if err := recordChange(tx, "reservations", reservationID, models.ActionUpdate); err != nil {
			return err
		}
		if err := recordChange(tx, "tables", tableID, models.ActionUpdate); err != nil {
			return err
		}

		table, err = readTable(tx, tableID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Cache.Invalidate(ctx, reservation.ReservationDate)
	return table, nil
}

func readTable(db *gorm.DB, id uint) (*models.Table, error) {
	var table models.Table
	if err := db.First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &table, nil
}
