package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mkarani/servicehub/handlers"
	"github.com/mkarani/servicehub/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Get("/users", handlers.ListUsers)
	admin.Patch("/users/:userId", handlers.ManageUser)
}
