package flights

import (
	"skybook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupFlightRoutes(router *gin.RouterGroup, controller *Controller) {
	// Public routes - anyone can browse the schedule
	publicFlights := router.Group("/flights")
	{
		publicFlights.GET("", controller.GetAllFlights) // GET /api/v1/flights - Browse flights
		publicFlights.GET("/:id", controller.GetFlight) // GET /api/v1/flights/:id - Flight details
	}

	// Admin routes - only admins manage the schedule
	adminFlights := router.Group("/admin/flights")
	adminFlights.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminFlights.POST("", controller.CreateFlight)       // POST /api/v1/admin/flights - Create flight
		adminFlights.PUT("/:id", controller.UpdateFlight)    // PUT /api/v1/admin/flights/:id - Update flight
		adminFlights.DELETE("/:id", controller.DeleteFlight) // DELETE /api/v1/admin/flights/:id - Delete flight
	}
}
