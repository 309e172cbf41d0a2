package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservations/middlewares"
	"github.com/yeremiapane/restaurant-reservations/services"
	"github.com/yeremiapane/restaurant-reservations/utils"
)

type ReservationController struct {
	Service *services.ReservationService
	// Today returns the dashboard's default date
	Today func() string
}

func NewReservationController(service *services.ReservationService, now func() time.Time, loc *time.Location) *ReservationController {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReservationController{
		Service: service,
		Today:   func() string { return now().In(loc).Format("2006-01-02") },
	}
}

// ListReservations -> ?mobile_number= untuk pencarian, selain itu list per tanggal (default hari ini)
func (rc *ReservationController) ListReservations(c *gin.Context) {
	if mobile := c.Query("mobile_number"); mobile != "" {
		reservations, err := rc.Service.Search(c.Request.Context(), mobile)
		if err != nil {
			_ = c.Error(err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, reservations)
		return
	}

	date := c.Query("date")
	if date == "" {
		date = rc.Today()
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		_ = c.Error(utils.NewAPIError(http.StatusBadRequest, "date is not a valid date: %s", date))
		return
	}

	reservations, err := rc.Service.List(c.Request.Context(), date)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, reservations)
}

func (rc *ReservationController) CreateReservation(c *gin.Context) {
	reservation, err := rc.Service.Create(c.Request.Context(), reservationDetails(middlewares.Data(c)))
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.InfoLogger.Printf("Reservation %d booked for %s %s (%d people)",
		reservation.ID, reservation.ReservationDate, reservation.ReservationTime, reservation.People)
	utils.RespondJSON(c, http.StatusCreated, reservation)
}

func (rc *ReservationController) GetReservationByID(c *gin.Context) {
	raw := c.Param("reservation_id")
	id, ok := middlewares.ParseID(raw)
	if !ok {
		_ = c.Error(utils.NewAPIError(http.StatusNotFound, "reservation_id: %s does not exist.", raw))
		return
	}
	reservation, err := rc.Service.Read(c.Request.Context(), id)
	if errors.Is(err, services.ErrRecordNotFound) {
		_ = c.Error(utils.NewAPIError(http.StatusNotFound, "reservation_id: %s does not exist.", raw))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, reservation)
}

// UpdateReservation -> edit detail reservasi (setelah UpdateChain)
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	current := middlewares.CurrentReservation(c)
	reservation, err := rc.Service.Update(c.Request.Context(), current.ID, reservationDetails(middlewares.Data(c)))
	if err != nil {
		_ = c.Error(serviceError(err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, reservation)
}

func (rc *ReservationController) UpdateReservationStatus(c *gin.Context) {
	current := middlewares.CurrentReservation(c)
	status := middlewares.StringField(middlewares.Data(c), "status")

	reservation, err := rc.Service.UpdateStatus(c.Request.Context(), current.ID, status)
	if err != nil {
		_ = c.Error(serviceError(err))
		return
	}

	utils.InfoLogger.Printf("Reservation %d status changed to %s", reservation.ID, reservation.Status)
	utils.RespondJSON(c, http.StatusOK, reservation)
}

func reservationDetails(data map[string]interface{}) services.ReservationDetails {
	return services.ReservationDetails{
		FirstName:       middlewares.StringField(data, "first_name"),
		LastName:        middlewares.StringField(data, "last_name"),
		MobileNumber:    middlewares.StringField(data, "mobile_number"),
		ReservationDate: middlewares.StringField(data, "reservation_date"),
		ReservationTime: middlewares.NormalizeTime(middlewares.StringField(data, "reservation_time")),
		People:          middlewares.IntField(data, "people"),
	}
}
