package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/mkarani/servicehub/services"
)

type CreatePaymentRequest struct {
	BookingID     string  `json:"booking_id" validate:"required,uuid"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Method        string  `json:"method" validate:"required,oneof=credit_card debit_card mpesa paypal bank_transfer"`
	ProviderTxnID *string `json:"provider_txn_id,omitempty"`
}

type UpdatePaymentRequest struct {
	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=pending completed failed refunded"`
	Method        *string `json:"method,omitempty" validate:"omitempty,oneof=credit_card debit_card mpesa paypal bank_transfer"`
	ProviderTxnID *string `json:"provider_txn_id,omitempty"`
}

func CreatePayment(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	clientID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	bookingID, _ := uuid.Parse(req.BookingID)

	payment, err := services.CreatePayment(clientID, services.CreatePaymentInput{
		BookingID:     bookingID,
		Amount:        req.Amount,
		Method:        req.Method,
		ProviderTxnID: req.ProviderTxnID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(payment)
}

func GetMyPayments(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	role := claims["role"].(string)

	payments, err := services.ListPayments(userID, role)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(payments)
}

func GetPayment(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	paymentID, err := uuid.Parse(c.Params("paymentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	payment, err := services.GetPayment(paymentID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(payment)
}

func UpdatePayment(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	role := claims["role"].(string)

	paymentID, err := uuid.Parse(c.Params("paymentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	var req UpdatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	payment, err := services.UpdatePayment(paymentID, userID, role, services.UpdatePaymentInput{
		Status:        req.Status,
		Method:        req.Method,
		ProviderTxnID: req.ProviderTxnID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(payment)
}

func DeletePayment(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	role := claims["role"].(string)

	paymentID, err := uuid.Parse(c.Params("paymentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	if err := services.DeletePayment(paymentID, role); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Payment deleted successfully"})
}
