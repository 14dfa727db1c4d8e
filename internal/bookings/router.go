package bookings

import (
	"skybook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupBookingRoutes(router *gin.RouterGroup, controller *Controller) {
	// User routes - authenticated users manage their own bookings
	userBookings := router.Group("/bookings")
	userBookings.Use(middleware.JWTAuth())
	{
		userBookings.POST("", controller.CreateBooking)       // POST /api/v1/bookings - Reserve tickets
		userBookings.GET("", controller.GetUserBookings)      // GET /api/v1/bookings - Own bookings with flight details
		userBookings.GET("/:id", controller.GetBooking)       // GET /api/v1/bookings/:id - Booking details
		userBookings.GET("/user/:id", controller.GetBookingsForUser)
		userBookings.PUT("/:id", controller.UpdateBooking)    // PUT /api/v1/bookings/:id - Amend quantity/seats
		userBookings.DELETE("/:id", controller.DeleteBooking) // DELETE /api/v1/bookings/:id - Release booking
	}

	// Admin routes - full ledger visibility
	adminBookings := router.Group("/admin/bookings")
	adminBookings.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminBookings.GET("", controller.GetAllBookings) // GET /api/v1/admin/bookings - All bookings
	}
}
