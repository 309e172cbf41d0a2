package services

import "errors"

var (
	ErrRecordNotFound       = errors.New("record not found")
	ErrReservationFinished  = errors.New("a finished reservation cannot be updated")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrTableOccupied        = errors.New("table is already occupied")
	ErrTableNotOccupied     = errors.New("table is not occupied")
	ErrInsufficientCapacity = errors.New("table does not have sufficient capacity")
)
