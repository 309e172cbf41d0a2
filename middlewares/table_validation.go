package middlewares

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservations/models"
	"github.com/yeremiapane/restaurant-reservations/services"
	"github.com/yeremiapane/restaurant-reservations/utils"
)

const tableKey = "table"

type TableValidator struct {
	Tables       *services.TableService
	Reservations *services.ReservationService
}

// CreateChain -> POST /tables
func (v *TableValidator) CreateChain() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		BindData(),
		HasProperties("table_name", "capacity"),
		HasOnlyValidProperties("table_name", "capacity", "reservation_id"),
		TableNameLength(),
		CapacityIsNumber(),
		CreatedFree(),
	}
}

// SeatChain -> PUT /tables/:table_id/seat
func (v *TableValidator) SeatChain() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		BindData(),
		HasProperties("reservation_id"),
		HasOnlyValidProperties("reservation_id"),
		ReservationIDIsNumber(),
		v.TableExists(),
		v.ReservationIsSeatable(),
		TableCapacity(),
		TableStatusFree(),
	}
}

// FinishChain -> DELETE /tables/:table_id/seat
func (v *TableValidator) FinishChain() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		v.TableExists(),
		TableStatusOccupied(),
	}
}

func CurrentTable(c *gin.Context) *models.Table {
	if v, ok := c.Get(tableKey); ok {
		if t, ok := v.(*models.Table); ok {
			return t
		}
	}
	return nil
}

// TableNameLength -> table_name minimal 2 karakter
func TableNameLength() gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := Data(c)["table_name"].(string)
		if !ok || utf8.RuneCountInString(name) < 2 {
			badRequest(c, "table_name must be at least 2 characters in length.")
			return
		}
		c.Next()
	}
}

func CapacityIsNumber() gin.HandlerFunc {
	return func(c *gin.Context) {
		capacity := Data(c)["capacity"]
		if _, ok := positiveInt(capacity); !ok {
			badRequest(c, "capacity field formatted incorrectly: %v. Needs to be a number.", capacity)
			return
		}
		c.Next()
	}
}

// CreatedFree rejects a new table that claims a reservation; seating goes
// through the seat route so the reservation status moves with it.
func CreatedFree() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, present := Data(c)["reservation_id"]; present && id != nil {
			badRequest(c, "a new table cannot be created occupied; seat it instead")
			return
		}
		c.Next()
	}
}

func ReservationIDIsNumber() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := Data(c)["reservation_id"]
		if _, ok := positiveInt(id); !ok {
			badRequest(c, "reservation_id must be a positive integer: %v", id)
			return
		}
		c.Next()
	}
}

// TableExists loads :table_id or answers 404.
func (v *TableValidator) TableExists() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param("table_id")
		id, ok := ParseID(raw)
		if !ok {
			Abort(c, utils.NewAPIError(http.StatusNotFound, "table_id: %s does not exist.", raw))
			return
		}
		table, err := v.Tables.Read(c.Request.Context(), id)
		if errors.Is(err, services.ErrRecordNotFound) {
			Abort(c, utils.NewAPIError(http.StatusNotFound, "table_id: %s does not exist.", raw))
			return
		}
		if err != nil {
			Abort(c, err)
			return
		}
		c.Set(tableKey, table)
		c.Next()
	}
}

// ReservationIsSeatable loads the body's reservation_id; only booked
// reservations can be seated.
func (v *TableValidator) ReservationIsSeatable() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uint(IntField(Data(c), "reservation_id"))
		reservation, err := v.Reservations.Read(c.Request.Context(), id)
		if errors.Is(err, services.ErrRecordNotFound) {
			Abort(c, utils.NewAPIError(http.StatusNotFound, "reservation_id: %d does not exist.", id))
			return
		}
		if err != nil {
			Abort(c, err)
			return
		}
		switch reservation.Status {
		case models.StatusBooked:
		case models.StatusSeated:
			badRequest(c, "reservation_id: %d is already seated.", id)
			return
		default:
			badRequest(c, "reservation_id: %d is %s.", id, reservation.Status)
			return
		}
		c.Set(reservationKey, reservation)
		c.Next()
	}
}

// TableCapacity -> kapasitas meja harus >= jumlah tamu
func TableCapacity() gin.HandlerFunc {
	return func(c *gin.Context) {
		table, reservation := CurrentTable(c), CurrentReservation(c)
		if table == nil || reservation == nil || table.Capacity < reservation.People {
			badRequest(c, "Table does not have sufficient capacity.")
			return
		}
		c.Next()
	}
}

func TableStatusFree() gin.HandlerFunc {
	return func(c *gin.Context) {
		if table := CurrentTable(c); table == nil || table.Occupied() {
			badRequest(c, "Table is already occupied.")
			return
		}
		c.Next()
	}
}

func TableStatusOccupied() gin.HandlerFunc {
	return func(c *gin.Context) {
		if table := CurrentTable(c); table == nil || !table.Occupied() {
			badRequest(c, "Table is not occupied.")
			return
		}
		c.Next()
	}
}
