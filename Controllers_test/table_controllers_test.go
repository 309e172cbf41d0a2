package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-reservations/models"
)

func TestCreateTable(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	w, resp := doJSON(t, r, http.MethodPost, "/tables", wrap(map[string]interface{}{
		"table_name": "Bar #1",
		"capacity":   2,
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Table
	decodeData(t, resp, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Bar #1", created.TableName)
	assert.Equal(t, 2, created.Capacity)
	assert.Nil(t, created.ReservationID)

	var outbox int64
	db.Model(&models.DBChange{}).Where("table_name = ? AND action_type = ?", "tables", models.ActionInsert).Count(&outbox)
	assert.Equal(t, int64(1), outbox)
}

func TestCreateTableValidation(t *testing.T) {
	cases := []struct {
		name    string
		data    map[string]interface{}
		message string
	}{
		{"missing table_name", map[string]interface{}{"capacity": 2}, "A 'table_name' property is required."},
		{"missing capacity", map[string]interface{}{"table_name": "Bar #1"}, "A 'capacity' property is required."},
		{"blank table_name", map[string]interface{}{"table_name": "  ", "capacity": 2}, "A 'table_name' property is required."},
		{"short name", map[string]interface{}{"table_name": "B", "capacity": 2}, "table_name must be at least 2 characters in length."},
		{"capacity as string", map[string]interface{}{"table_name": "Bar #1", "capacity": "2"}, "capacity field formatted incorrectly: 2. Needs to be a number."},
		{"zero capacity", map[string]interface{}{"table_name": "Bar #1", "capacity": 0}, "capacity field formatted incorrectly: 0. Needs to be a number."},
		{"unknown field", map[string]interface{}{"table_name": "Bar #1", "capacity": 2, "shape": "round"}, "Invalid field(s): shape"},
		{"created occupied", map[string]interface{}{"table_name": "Bar #1", "capacity": 2, "reservation_id": 1}, "a new table cannot be created occupied; seat it instead"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)
			r := setupRouter(db)

			w, resp := doJSON(t, r, http.MethodPost, "/tables", wrap(tc.data))
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tc.message, resp.Error)

			var count int64
			db.Model(&models.Table{}).Count(&count)
			assert.Zero(t, count)
		})
	}
}

func TestCreateTableAllowsNullReservation(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	w, _ := doJSON(t, r, http.MethodPost, "/tables", wrap(map[string]interface{}{
		"table_name":     "#7",
		"capacity":       6,
		"reservation_id": nil,
	}))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestListTablesOrderedByName(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	seedTable(t, db, "#2", 6, nil)
	seedTable(t, db, "Bar #2", 1, nil)
	seedTable(t, db, "#1", 6, nil)
	seedTable(t, db, "Bar #1", 1, nil)

	w, resp := doJSON(t, r, http.MethodGet, "/tables", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tables []models.Table
	decodeData(t, resp, &tables)
	require.Len(t, tables, 4)
	names := make([]string, 0, len(tables))
	for _, table := range tables {
		names = append(names, table.TableName)
	}
	assert.Equal(t, []string{"#1", "#2", "Bar #1", "Bar #2"}, names)
}

func TestGetTableByID(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	table := seedTable(t, db, "Patio", 4, nil)

	w, resp := doJSON(t, r, http.MethodGet, fmt.Sprintf("/tables/%d", table.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Table
	decodeData(t, resp, &got)
	assert.Equal(t, "Patio", got.TableName)

	w, resp = doJSON(t, r, http.MethodGet, "/tables/77", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "table_id: 77 does not exist.", resp.Error)
}

func TestSeatTable(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	reservation := seedReservation(t, db, 4, models.StatusBooked)
	table := seedTable(t, db, "#1", 6, nil)

	w, resp := doJSON(t, r, http.MethodPut, fmt.Sprintf("/tables/%d/seat", table.ID),
		wrap(map[string]interface{}{"reservation_id": reservation.ID}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var seated models.Table
	decodeData(t, resp, &seated)
	require.NotNil(t, seated.ReservationID)
	assert.Equal(t, reservation.ID, *seated.ReservationID)

	assert.Equal(t, models.StatusSeated, reloadReservation(t, db, reservation.ID).Status)
	stored := reloadTable(t, db, table.ID)
	require.NotNil(t, stored.ReservationID)
	assert.Equal(t, reservation.ID, *stored.ReservationID)
}

func TestSeatTableRejections(t *testing.T) {
	type fixture struct {
		tableID       uint
		reservationID interface{}
	}

	cases := []struct {
		name    string
		setup   func(t *testing.T, db *gorm.DB) fixture
		code    int
		message string
	}{
		{
			name: "missing reservation_id",
			setup: func(t *testing.T, db *gorm.DB) fixture {
				table := seedTable(t, db, "#1", 6, nil)
				return fixture{tableID: table.ID}
			},
			code:    http.StatusBadRequest,
			message: "A 'reservation_id' property is required.",
		},
		{
			name: "reservation_id as string",
			setup: func(t *testing.T, db *gorm.DB) fixture {
				table := seedTable(t, db, "#1", 6, nil)
				return fixture{tableID: table.ID, reservationID: "1"}
			},
			code:    http.StatusBadRequest,
			message: "reservation_id must be a positive integer: 1",
		},
		{
			name: "unknown table",
			setup: func(t *testing.T, db *gorm.DB) fixture {
				reservation := seedReservation(t, db, 2, models.StatusBooked)
				return fixture{tableID: 99, reservationID: reservation.ID}
			},
			code:    http.StatusNotFound,
			message: "table_id: 99 does not exist.",
		},
		{
			name: "unknown reservation",
			setup: func(t *testing.T, db *gorm.DB) fixture {
				table := seedTable(t, db, "#1", 6, nil)
				return fixture{tableID: table.ID, reservationID: 999}
			},
			code:    http.StatusNotFound,
			message: "reservation_id: 999 does not exist.",
		},
		{
			name: "reservation already seated",
			setup: func(t *testing.T, db *gorm.DB) fixture {
				reservation := seedReservation(t, db, 2, models.StatusSeated)
				seedTable(t, db, "#2", 6, &reservation.ID)
				table := seedTable(t, db, "#1", 6, nil)
				return fixture{tableID: table.ID, reservationID: reservation.ID}
			},
			code:    http.StatusBadRequest,
			message: "is already seated.",
		},
		{
			name: "reservation cancelled",
			setup: func(t *testing.T, db *gorm.DB) fixture {
				reservation := seedReservation(t, db, 2, models.StatusCancelled)
				table := seedTable(t, db, "#1", 6, nil)
				return fixture{tableID: table.ID, reservationID: reservation.ID}
			},
			code:    http.StatusBadRequest,
			message: "is cancelled.",
		},
		{
			name: "insufficient capacity",
			setup: func(t *testing.T, db *gorm.DB) fixture {
				reservation := seedReservation(t, db, 4, models.StatusBooked)
				table := seedTable(t, db, "Bar #1", 1, nil)
				return fixture{tableID: table.ID, reservationID: reservation.ID}
			},
			code:    http.StatusBadRequest,
			message: "Table does not have sufficient capacity.",
		},
		{
			name: "table occupied",
			setup: func(t *testing.T, db *gorm.DB) fixture {
				sitting := seedReservation(t, db, 2, models.StatusSeated)
				waiting := seedReservation(t, db, 2, models.StatusBooked)
				table := seedTable(t, db, "#1", 6, &sitting.ID)
				return fixture{tableID: table.ID, reservationID: waiting.ID}
			},
			code:    http.StatusBadRequest,
			message: "Table is already occupied.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)
			r := setupRouter(db)
			f := tc.setup(t, db)

			data := map[string]interface{}{}
			if f.reservationID != nil {
				data["reservation_id"] = f.reservationID
			}
			w, resp := doJSON(t, r, http.MethodPut, fmt.Sprintf("/tables/%d/seat", f.tableID), wrap(data))
			assert.Equal(t, tc.code, w.Code, w.Body.String())
			assert.Contains(t, resp.Error, tc.message)

			var seatedCount int64
			db.Model(&models.Reservation{}).Where("status = ?", models.StatusSeated).Count(&seatedCount)
			var occupiedCount int64
			db.Model(&models.Table{}).Where("reservation_id IS NOT NULL").Count(&occupiedCount)
			assert.Equal(t, seatedCount, occupiedCount, "seated reservations and occupied tables must stay in step")
		})
	}
}

func TestFinishTable(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	reservation := seedReservation(t, db, 2, models.StatusSeated)
	table := seedTable(t, db, "#1", 6, &reservation.ID)

	w, resp := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/tables/%d/seat", table.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var freed models.Table
	decodeData(t, resp, &freed)
	assert.Nil(t, freed.ReservationID)

	assert.Nil(t, reloadTable(t, db, table.ID).ReservationID)
	assert.Equal(t, models.StatusFinished, reloadReservation(t, db, reservation.ID).Status)

	// finished reservations are read-only from here on
	w, resp = doJSON(t, r, http.MethodPut, fmt.Sprintf("/reservations/%d", reservation.ID), wrap(validReservation()))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "A finished reservation cannot be updated.", resp.Error)

	// and the table can take the next party
	next := seedReservation(t, db, 2, models.StatusBooked)
	w, _ = doJSON(t, r, http.MethodPut, fmt.Sprintf("/tables/%d/seat", table.ID),
		wrap(map[string]interface{}{"reservation_id": next.ID}))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestFinishTableRejections(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	free := seedTable(t, db, "#1", 6, nil)

	w, resp := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/tables/%d/seat", free.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Table is not occupied.", resp.Error)

	w, resp = doJSON(t, r, http.MethodDelete, "/tables/99/seat", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "table_id: 99 does not exist.", resp.Error)
}
