package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservations/middlewares"
	"github.com/yeremiapane/restaurant-reservations/services"
	"github.com/yeremiapane/restaurant-reservations/utils"
)

type TableController struct {
	Service *services.TableService
}

func NewTableController(service *services.TableService) *TableController {
	return &TableController{Service: service}
}

// GetAllTables -> menampilkan seluruh meja
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Service.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, tables)
}

// CreateTable -> menambahkan meja baru (setelah CreateChain)
func (tc *TableController) CreateTable(c *gin.Context) {
	data := middlewares.Data(c)
	table, err := tc.Service.Create(c.Request.Context(),
		middlewares.StringField(data, "table_name"),
		middlewares.IntField(data, "capacity"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.InfoLogger.Printf("New table created: %s (capacity=%d)", table.TableName, table.Capacity)
	utils.RespondJSON(c, http.StatusCreated, table)
}

// GetTableByID -> detail satu meja
func (tc *TableController) GetTableByID(c *gin.Context) {
	raw := c.Param("table_id")
	id, ok := middlewares.ParseID(raw)
	if !ok {
		_ = c.Error(utils.NewAPIError(http.StatusNotFound, "table_id: %s does not exist.", raw))
		return
	}
	table, err := tc.Service.Read(c.Request.Context(), id)
	if errors.Is(err, services.ErrRecordNotFound) {
		_ = c.Error(utils.NewAPIError(http.StatusNotFound, "table_id: %s does not exist.", raw))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, table)
}

// SeatTable -> dudukkan reservasi di meja (setelah SeatChain)
func (tc *TableController) SeatTable(c *gin.Context) {
	table := middlewares.CurrentTable(c)
	reservation := middlewares.CurrentReservation(c)

	seated, err := tc.Service.Seat(c.Request.Context(), table.ID, reservation.ID)
	if err != nil {
		_ = c.Error(serviceError(err))
		return
	}

	utils.InfoLogger.Printf("Reservation %d seated at table %s", reservation.ID, seated.TableName)
	utils.RespondJSON(c, http.StatusOK, seated)
}

// FinishTable -> kosongkan meja dan tandai reservasi finished (setelah FinishChain)
func (tc *TableController) FinishTable(c *gin.Context) {
	table := middlewares.CurrentTable(c)

	finished, err := tc.Service.Finish(c.Request.Context(), table.ID)
	if err != nil {
		_ = c.Error(serviceError(err))
		return
	}

	utils.InfoLogger.Printf("Table %s finished (reservation %d)", finished.TableName, *table.ReservationID)
	utils.RespondJSON(c, http.StatusOK, finished)
}
