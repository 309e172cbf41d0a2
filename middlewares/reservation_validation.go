package middlewares

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservations/models"
	"github.com/yeremiapane/restaurant-reservations/services"
	"github.com/yeremiapane/restaurant-reservations/utils"
)

const (
	reservationKey = "reservation"

	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	closedWeekday = time.Tuesday
	openingMinute = 10*60 + 30 // 10:30
	closingMinute = 21*60 + 30 // 21:30, last seating
	mobileDigits  = 10
)

var (
	reservationFields = []string{
		"first_name", "last_name", "mobile_number",
		"reservation_date", "reservation_time", "people",
	}
	// fields the dashboard echoes back when it PUTs a whole record
	reservationReadOnlyFields = []string{"reservation_id", "status", "created_at", "updated_at"}

	timePattern        = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)(:[0-5]\d)?$`)
	mobilePunctuation  = regexp.MustCompile(`[()\s\-.+]`)
	mobileDigitPattern = regexp.MustCompile(`^\d+$`)
)

// ReservationValidator builds the ordered check chains for reservation routes.
// Now and Location drive the calendar rules; zero values mean time.Now and
// time.Local.
type ReservationValidator struct {
	Reservations *services.ReservationService
	Now          func() time.Time
	Location     *time.Location
}

func (v *ReservationValidator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

func (v *ReservationValidator) location() *time.Location {
	if v.Location != nil {
		return v.Location
	}
	return time.Local
}

// CreateChain -> POST /reservations
func (v *ReservationValidator) CreateChain() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		BindData(),
		HasProperties(reservationFields...),
		HasOnlyValidProperties(allReservationFields()...),
		NamesAreText(),
		ValidMobileNumber(),
		ValidReservationDate(),
		ValidReservationTime(),
		ValidPeople(),
		StatusIsBooked(),
		v.NotOnClosedDay(),
		v.InTheFuture(),
		v.WithinOpenHours(),
	}
}

// UpdateChain -> PUT /reservations/:reservation_id
func (v *ReservationValidator) UpdateChain() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		v.ReservationExists(),
		NotFinished(),
		BindData(),
		HasProperties(reservationFields...),
		HasOnlyValidProperties(allReservationFields()...),
		NamesAreText(),
		ValidMobileNumber(),
		ValidReservationDate(),
		ValidReservationTime(),
		ValidPeople(),
		v.FitsSeatedTable(),
		StatusUnchanged(),
		v.NotOnClosedDay(),
		v.InTheFuture(),
		v.WithinOpenHours(),
	}
}

// StatusChain -> PUT /reservations/:reservation_id/status
func (v *ReservationValidator) StatusChain() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		BindData(),
		HasProperties("status"),
		HasOnlyValidProperties("status"),
		KnownStatus(),
		v.ReservationExists(),
		NotFinished(),
		LegalTransition(),
	}
}

func allReservationFields() []string {
	fields := make([]string, 0, len(reservationFields)+len(reservationReadOnlyFields))
	fields = append(fields, reservationFields...)
	return append(fields, reservationReadOnlyFields...)
}

// ParseID reads a positive integer path parameter.
func ParseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// CurrentReservation returns the reservation loaded by ReservationExists or
// by the seat chain.
func CurrentReservation(c *gin.Context) *models.Reservation {
	if v, ok := c.Get(reservationKey); ok {
		if r, ok := v.(*models.Reservation); ok {
			return r
		}
	}
	return nil
}

// ReservationExists loads :reservation_id or answers 404.
func (v *ReservationValidator) ReservationExists() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param("reservation_id")
		id, ok := ParseID(raw)
		if !ok {
			Abort(c, utils.NewAPIError(http.StatusNotFound, "reservation_id: %s does not exist.", raw))
			return
		}
		reservation, err := v.Reservations.Read(c.Request.Context(), id)
		if errors.Is(err, services.ErrRecordNotFound) {
			Abort(c, utils.NewAPIError(http.StatusNotFound, "reservation_id: %s does not exist.", raw))
			return
		}
		if err != nil {
			Abort(c, err)
			return
		}
		c.Set(reservationKey, reservation)
		c.Next()
	}
}

// NotFinished -> reservasi finished tidak boleh diubah lagi
func NotFinished() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r := CurrentReservation(c); r != nil && r.Status == models.StatusFinished {
			badRequest(c, "A finished reservation cannot be updated.")
			return
		}
		c.Next()
	}
}

func NamesAreText() gin.HandlerFunc {
	return func(c *gin.Context) {
		data := Data(c)
		for _, field := range []string{"first_name", "last_name"} {
			if _, ok := data[field].(string); !ok {
				badRequest(c, "%s must be text.", field)
				return
			}
		}
		c.Next()
	}
}

// ValidMobileNumber requires ten digits once common punctuation is removed.
func ValidMobileNumber() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := Data(c)["mobile_number"].(string)
		digits := mobilePunctuation.ReplaceAllString(raw, "")
		if !ok || len(digits) != mobileDigits || !mobileDigitPattern.MatchString(digits) {
			badRequest(c, "mobile_number must be a valid %d-digit phone number.", mobileDigits)
			return
		}
		c.Next()
	}
}

func ValidReservationDate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := Data(c)["reservation_date"].(string)
		if _, err := time.Parse(dateLayout, raw); !ok || err != nil {
			badRequest(c, "reservation_date is not a valid date: %v", Data(c)["reservation_date"])
			return
		}
		c.Next()
	}
}

func ValidReservationTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := Data(c)["reservation_time"].(string)
		if !ok || !timePattern.MatchString(raw) {
			badRequest(c, "reservation_time is not a valid time: %v", Data(c)["reservation_time"])
			return
		}
		c.Next()
	}
}

func ValidPeople() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := positiveInt(Data(c)["people"]); !ok {
			badRequest(c, "people must be a number greater than zero: %v", Data(c)["people"])
			return
		}
		c.Next()
	}
}

// FitsSeatedTable -> party yang sudah duduk tidak boleh melebihi kapasitas mejanya
func (v *ReservationValidator) FitsSeatedTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		current := CurrentReservation(c)
		if current == nil || current.Status != models.StatusSeated {
			c.Next()
			return
		}
		table, err := v.Reservations.SeatedTable(c.Request.Context(), current.ID)
		if errors.Is(err, services.ErrRecordNotFound) {
			c.Next()
			return
		}
		if err != nil {
			Abort(c, err)
			return
		}
		if table.Capacity < IntField(Data(c), "people") {
			badRequest(c, "Table does not have sufficient capacity.")
			return
		}
		c.Next()
	}
}

// StatusIsBooked -> reservasi baru hanya boleh booked (atau status tidak dikirim)
func StatusIsBooked() gin.HandlerFunc {
	return func(c *gin.Context) {
		status, present := Data(c)["status"]
		if present && status != nil && status != models.StatusBooked {
			badRequest(c, "status '%v' is not allowed when creating a reservation", status)
			return
		}
		c.Next()
	}
}

// StatusUnchanged rejects edits that try to move the lifecycle; that goes
// through the status route.
func StatusUnchanged() gin.HandlerFunc {
	return func(c *gin.Context) {
		status, present := Data(c)["status"]
		current := CurrentReservation(c)
		if present && status != nil && current != nil && status != current.Status {
			badRequest(c, "status can only be changed through /reservations/:id/status")
			return
		}
		c.Next()
	}
}

func KnownStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		status, ok := Data(c)["status"].(string)
		if !ok || !models.IsKnownStatus(status) {
			badRequest(c, "unknown status: %v", Data(c)["status"])
			return
		}
		c.Next()
	}
}

func LegalTransition() gin.HandlerFunc {
	return func(c *gin.Context) {
		current := CurrentReservation(c)
		next := StringField(Data(c), "status")
		if current == nil || !models.CanTransition(current.Status, next) {
			from := ""
			if current != nil {
				from = current.Status
			}
			badRequest(c, "cannot change status from %s to %s", from, next)
			return
		}
		c.Next()
	}
}

// reservationAt combines the validated date and time in the restaurant's zone.
func (v *ReservationValidator) reservationAt(c *gin.Context) time.Time {
	data := Data(c)
	at, _ := time.ParseInLocation(dateLayout+" "+timeLayout,
		StringField(data, "reservation_date")+" "+NormalizeTime(StringField(data, "reservation_time")),
		v.location())
	return at
}

func (v *ReservationValidator) NotOnClosedDay() gin.HandlerFunc {
	return func(c *gin.Context) {
		if v.reservationAt(c).Weekday() == closedWeekday {
			badRequest(c, "The restaurant is closed on %ss.", closedWeekday)
			return
		}
		c.Next()
	}
}

func (v *ReservationValidator) InTheFuture() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !v.reservationAt(c).After(v.now().In(v.location())) {
			badRequest(c, "Reservations must be made for a future date and time.")
			return
		}
		c.Next()
	}
}

func (v *ReservationValidator) WithinOpenHours() gin.HandlerFunc {
	return func(c *gin.Context) {
		at := v.reservationAt(c)
		minute := at.Hour()*60 + at.Minute()
		if minute < openingMinute || minute > closingMinute {
			badRequest(c, "Reservations are only accepted between 10:30 AM and 9:30 PM.")
			return
		}
		c.Next()
	}
}

// NormalizeTime trims an HH:MM[:SS] value to HH:MM.
func NormalizeTime(raw string) string {
	if len(raw) > len(timeLayout) {
		return raw[:len(timeLayout)]
	}
	return raw
}
