package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mkarani/servicehub/handlers"
	"github.com/mkarani/servicehub/middleware"
)

func WalletRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	wallet := api.Group("/wallet", middleware.Protected())
	wallet.Get("/me", handlers.GetMyWallet)
	wallet.Get("/me/transactions", handlers.GetMyTransactions)
}
