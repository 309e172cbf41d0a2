package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/yeremiapane/restaurant-reservations/models"
	"gorm.io/gorm"
)

var nonDigits = regexp.MustCompile(`\D`)

// strippedMobile removes the punctuation staff usually type into phone numbers
// so a digits-only search can match "(800) 555-1212" with "5551".
const strippedMobile = "REPLACE(REPLACE(REPLACE(REPLACE(REPLACE(mobile_number, '(', ''), ')', ''), ' ', ''), '-', ''), '.', '')"

// ReservationDetails are the fields staff may set when booking or editing.
type ReservationDetails struct {
	FirstName       string
	LastName        string
	MobileNumber    string
	ReservationDate string
	ReservationTime string
	People          int
}

type ReservationService struct {
	DB    *gorm.DB
	Cache ReservationCache
}

func NewReservationService(db *gorm.DB, cache ReservationCache) *ReservationService {
	if cache == nil {
		cache = NoopReservationCache{}
	}
	return &ReservationService{DB: db, Cache: cache}
}

// List -> reservasi aktif (belum finished / cancelled) pada tanggal tertentu, urut jam
func (s *ReservationService) List(ctx context.Context, date string) ([]models.Reservation, error) {
	if cached, ok := s.Cache.Get(ctx, date); ok {
		return cached, nil
	}

	reservations := []models.Reservation{}
	err := s.DB.WithContext(ctx).
		Where("reservation_date = ?", date).
		Where("status NOT IN ?", []string{models.StatusFinished, models.StatusCancelled}).
		Order("reservation_time ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("list reservations for %s: %w", date, err)
	}

	s.Cache.Set(ctx, date, reservations)
	return reservations, nil
}

// Search matches any part of the stored mobile number, ignoring punctuation,
// across every status. A query without digits matches nothing.
func (s *ReservationService) Search(ctx context.Context, mobile string) ([]models.Reservation, error) {
	digits := nonDigits.ReplaceAllString(mobile, "")

	reservations := []models.Reservation{}
	if digits == "" {
		return reservations, nil
	}
	err := s.DB.WithContext(ctx).
		Where(strippedMobile+" LIKE ?", "%"+digits+"%").
		Order("reservation_date ASC").
		Order("reservation_time ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("search reservations by mobile: %w", err)
	}
	return reservations, nil
}

func (s *ReservationService) Read(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.DB.WithContext(ctx).First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// SeatedTable returns the table currently holding the reservation, or
// ErrRecordNotFound when it is not at a table.
func (s *ReservationService) SeatedTable(ctx context.Context, reservationID uint) (*models.Table, error) {
	return tableHolding(s.DB.WithContext(ctx), reservationID)
}

// Create -> reservasi baru selalu berstatus booked
func (s *ReservationService) Create(ctx context.Context, details ReservationDetails) (*models.Reservation, error) {
	reservation := models.Reservation{
		FirstName:       details.FirstName,
		LastName:        details.LastName,
		MobileNumber:    details.MobileNumber,
		ReservationDate: details.ReservationDate,
		ReservationTime: details.ReservationTime,
		People:          details.People,
		Status:          models.StatusBooked,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reservation).Error; err != nil {
			return err
		}
		return recordChange(tx, "reservations", reservation.ID, models.ActionInsert)
	})
	if err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	s.Cache.Invalidate(ctx, reservation.ReservationDate)
	return &reservation, nil
}

// Update replaces the editable fields of a reservation. Finished reservations
// are immutable, and a seated party cannot grow past its table's capacity.
func (s *ReservationService) Update(ctx context.Context, id uint, details ReservationDetails) (*models.Reservation, error) {
	var reservation models.Reservation
	var previousDate string

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reservation, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}
		if reservation.Status == models.StatusFinished {
			return ErrReservationFinished
		}
		previousDate = reservation.ReservationDate

		if reservation.Status == models.StatusSeated {
			table, err := tableHolding(tx, id)
			if err != nil && !errors.Is(err, ErrRecordNotFound) {
				return err
			}
			if table != nil && table.Capacity < details.People {
				return ErrInsufficientCapacity
			}
		}

		err := tx.Model(&reservation).
			Select("first_name", "last_name", "mobile_number", "reservation_date", "reservation_time", "people").
			Updates(models.Reservation{
				FirstName:       details.FirstName,
				LastName:        details.LastName,
				MobileNumber:    details.MobileNumber,
				ReservationDate: details.ReservationDate,
				ReservationTime: details.ReservationTime,
				People:          details.People,
			}).Error
		if err != nil {
			return err
		}
		if err := tx.First(&reservation, id).Error; err != nil {
			return err
		}
		return recordChange(tx, "reservations", reservation.ID, models.ActionUpdate)
	})
	if err != nil {
		return nil, err
	}

	s.Cache.Invalidate(ctx, previousDate, reservation.ReservationDate)
	return &reservation, nil
}

// UpdateStatus moves a reservation along its lifecycle. Finishing or
// cancelling also frees any table still linked to it, in the same transaction.
func (s *ReservationService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Reservation, error) {
	var reservation models.Reservation

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reservation, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}
		if reservation.Status == models.StatusFinished {
			return ErrReservationFinished
		}
		if !models.CanTransition(reservation.Status, status) {
			return ErrInvalidTransition
		}

		res := tx.Model(&models.Reservation{}).
			Where("reservation_id = ? AND status = ?", id, reservation.Status).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		reservation.Status = status
		if err := recordChange(tx, "reservations", id, models.ActionUpdate); err != nil {
			return err
		}

		if status != models.StatusFinished && status != models.StatusCancelled {
			return nil
		}
		return releaseTables(tx, id)
	})
	if err != nil {
		return nil, err
	}

	s.Cache.Invalidate(ctx, reservation.ReservationDate)
	return &reservation, nil
}

func releaseTables(tx *gorm.DB, reservationID uint) error {
	var tableIDs []uint
	if err := tx.Model(&models.Table{}).
		Where("reservation_id = ?", reservationID).
		Pluck("table_id", &tableIDs).Error; err != nil {
		return err
	}
	if len(tableIDs) == 0 {
		return nil
	}
	if err := tx.Model(&models.Table{}).
		Where("table_id IN ?", tableIDs).
		Update("reservation_id", nil).Error; err != nil {
		return err
	}
	for _, tableID := range tableIDs {
		if err := recordChange(tx, "tables", tableID, models.ActionUpdate); err != nil {
			return err
		}
	}
	return nil
}

func tableHolding(db *gorm.DB, reservationID uint) (*models.Table, error) {
	var table models.Table
	if err := db.Where("reservation_id = ?", reservationID).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &table, nil
}
