package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mkarani/servicehub/handlers"
	"github.com/mkarani/servicehub/middleware"
)

func ServiceRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/services", handlers.ListServices)
	api.Get("/services/:serviceId", handlers.GetService)

	provider := api.Group("/services", middleware.Protected(), middleware.ProviderRequired())
	provider.Post("", handlers.CreateService)
	provider.Put("/:serviceId", handlers.UpdateService)
	provider.Delete("/:serviceId", handlers.DeleteService)
}
