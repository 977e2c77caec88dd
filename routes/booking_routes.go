package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mkarani/servicehub/handlers"
	"github.com/mkarani/servicehub/middleware"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	booking := api.Group("/bookings", middleware.Protected())
	booking.Get("/me", handlers.GetMyBookings)
	booking.Post("", handlers.CreateBooking)
	booking.Get("/:bookingId", handlers.GetBooking)
	booking.Patch("/:bookingId", handlers.UpdateBooking)
	booking.Delete("/:bookingId", handlers.DeleteBooking)
}
