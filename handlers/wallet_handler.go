package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/mkarani/servicehub/services"
)

func GetMyWallet(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	wallet, err := services.GetWalletByUser(userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(wallet)
}

func GetMyTransactions(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	entries, err := services.ListWalletTransactions(userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(entries)
}
