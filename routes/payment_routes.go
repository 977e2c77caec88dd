package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mkarani/servicehub/handlers"
	"github.com/mkarani/servicehub/middleware"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	payment := api.Group("/payments", middleware.Protected())
	payment.Get("/me", handlers.GetMyPayments)
	payment.Post("", handlers.CreatePayment)
	payment.Get("/:paymentId", handlers.GetPayment)
	payment.Patch("/:paymentId", handlers.UpdatePayment)
	payment.Delete("/:paymentId", handlers.DeletePayment)
}
