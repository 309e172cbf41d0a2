package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservations/controllers"
	"github.com/yeremiapane/restaurant-reservations/middlewares"
	"github.com/yeremiapane/restaurant-reservations/models"
	"github.com/yeremiapane/restaurant-reservations/services"
	"gorm.io/gorm"
)

// Options tweaks SetupRouter; the zero value is usable (no cache, wall clock,
// local time zone, no rate limit).
type Options struct {
	Cache          services.ReservationCache
	Now            func() time.Time
	Location       *time.Location
	CORSOrigin     string
	RateLimitRPS   float64
	RateLimitBurst int
}

func SetupRouter(db *gorm.DB, opts Options) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.Recovery())
	r.Use(middlewares.ErrorHandler())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.CORSOrigin))
	if opts.RateLimitRPS > 0 {
		r.Use(middlewares.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).RateLimit())
	}
	r.NoRoute(middlewares.NotFound())

	// Inisialisasi service & controller
	reservationSvc := services.NewReservationService(db, opts.Cache)
	tableSvc := services.NewTableService(db, opts.Cache)

	reservationCtrl := controllers.NewReservationController(reservationSvc, opts.Now, opts.Location)
	tableCtrl := controllers.NewTableController(tableSvc)
	userCtrl := controllers.NewUserController(db)

	reservationVal := &middlewares.ReservationValidator{
		Reservations: reservationSvc,
		Now:          opts.Now,
		Location:     opts.Location,
	}
	tableVal := &middlewares.TableValidator{
		Tables:       tableSvc,
		Reservations: reservationSvc,
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      RESERVATIONS
	// ----------------------------------------------------------------
	r.GET("/reservations", reservationCtrl.ListReservations)
	r.POST("/reservations", chain(reservationVal.CreateChain(), reservationCtrl.CreateReservation)...)
	r.GET("/reservations/:reservation_id", reservationCtrl.GetReservationByID)
	r.PUT("/reservations/:reservation_id", chain(reservationVal.UpdateChain(), reservationCtrl.UpdateReservation)...)
	r.PUT("/reservations/:reservation_id/status", chain(reservationVal.StatusChain(), reservationCtrl.UpdateReservationStatus)...)

	// ----------------------------------------------------------------
	//                      TABLES
	// ----------------------------------------------------------------
	r.GET("/tables", tableCtrl.GetAllTables)
	r.POST("/tables", chain(tableVal.CreateChain(), tableCtrl.CreateTable)...)
	r.GET("/tables/:table_id", tableCtrl.GetTableByID)
	r.PUT("/tables/:table_id/seat", chain(tableVal.SeatChain(), tableCtrl.SeatTable)...)
	r.DELETE("/tables/:table_id/seat", chain(tableVal.FinishChain(), tableCtrl.FinishTable)...)

	// ----------------------------------------------------------------
	//                      STAFF
	// ----------------------------------------------------------------
	auth := r.Group("/auth")
	auth.Use(middlewares.NewStrictRateLimiter())
	{
		auth.POST("/register", userCtrl.Register)
		auth.POST("/login", userCtrl.Login)
	}

	staff := r.Group("/staff")
	staff.Use(middlewares.AuthMiddleware())
	staff.GET("/profile", userCtrl.GetProfile)
	staff.POST("/users", middlewares.RequireRole(models.RoleAdmin), userCtrl.Register)

	ws := r.Group("/ws")
	ws.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(models.RoleHost, models.RoleManager, models.RoleAdmin))
	ws.GET("/floor", controllers.FloorHandler)

	return r
}

func chain(checks []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	return append(checks, handler)
}
