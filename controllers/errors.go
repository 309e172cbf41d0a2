package controllers

import (
	"errors"
	"net/http"

	"github.com/yeremiapane/restaurant-reservations/services"
	"github.com/yeremiapane/restaurant-reservations/utils"
)

// serviceError maps service sentinels onto client errors. The validation
// chains reject these cases first; they still surface here when a concurrent
// request changes the rows between validation and the transaction.
func serviceError(err error) error {
	switch {
	case errors.Is(err, services.ErrRecordNotFound):
		return utils.NewAPIError(http.StatusNotFound, "%s", err.Error())
	case errors.Is(err, services.ErrReservationFinished):
		return utils.NewAPIError(http.StatusBadRequest, "A finished reservation cannot be updated.")
	case errors.Is(err, services.ErrTableOccupied):
		return utils.NewAPIError(http.StatusBadRequest, "Table is already occupied.")
	case errors.Is(err, services.ErrTableNotOccupied):
		return utils.NewAPIError(http.StatusBadRequest, "Table is not occupied.")
	case errors.Is(err, services.ErrInsufficientCapacity):
		return utils.NewAPIError(http.StatusBadRequest, "Table does not have sufficient capacity.")
	case errors.Is(err, services.ErrInvalidTransition):
		return utils.NewAPIError(http.StatusBadRequest, "%s", err.Error())
	}
	return err
}
