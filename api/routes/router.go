// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"skybook/internal/auth"
	"skybook/internal/bookings"
	"skybook/internal/flights"
	"skybook/internal/shared/config"
	"skybook/internal/shared/database"
	"skybook/internal/shared/middleware"
	"skybook/internal/users"
	"skybook/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher bookings.Publisher

	flightService  flights.Service
	bookingService bookings.Service
}

// NewRouter creates a new router instance. publisher may be nil when Kafka
// is disabled.
func NewRouter(cfg *config.Config, db *database.DB, publisher bookings.Publisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupUserRoutes(api)

		// Flights before bookings: the booking engine shares the flight
		// repository, and flight deletion needs the booking counter.
		r.setupFlightRoutes(api)
		r.setupBookingRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "skybook-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "skybook-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController, r.config)

	authRouter.SetupRoutes(rg)
}

// setupUserRoutes configures user administration routes. Registered here
// rather than in package users: middleware depends on users for the role
// constants, so a users-side router would close an import cycle.
func (r *Router) setupUserRoutes(rg *gin.RouterGroup) {
	userRepo := users.NewRepository(r.db.GetPostgreSQL())
	userController := users.NewController(userRepo)

	admin := rg.Group("/admin/users")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.GET("", userController.GetAllUsers) // GET /api/v1/admin/users
	}
}

// setupFlightRoutes configures flight schedule routes
func (r *Router) setupFlightRoutes(rg *gin.RouterGroup) {
	flightRepo := flights.NewRepository(r.db.GetPostgreSQL())

	var cacheService cache.Service
	if r.db.GetRedis() != nil {
		cacheService = cache.NewService(r.db.GetRedis())
	}
	r.flightService = flights.NewService(flightRepo, cacheService, r.config.Redis.FlightCacheTTL)

	flightController := flights.NewController(r.flightService)
	flights.SetupFlightRoutes(rg, flightController)
}

// setupBookingRoutes configures booking routes and wires the booking
// counter back into the flight service for delete protection.
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	flightRepo := flights.NewRepository(r.db.GetPostgreSQL())
	r.bookingService = bookings.NewService(bookingRepo, flightRepo, r.publisher)

	if r.flightService != nil {
		r.flightService.SetBookingCounter(r.bookingService)
	}

	bookingController := bookings.NewController(r.bookingService)
	bookings.SetupBookingRoutes(rg, bookingController)
}
