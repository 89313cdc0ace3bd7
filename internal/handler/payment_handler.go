package handler

import (
	"errors"

	"go-scanify-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	payments service.PaymentService
}

func NewPaymentHandler(payments service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Verify reconciles an asynchronous payment confirmation. Safe to retry:
// an already-applied order returns 409 without re-applying anything.
// POST /api/v1/payments/verify
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	var req service.VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	resp, err := h.payments.VerifyPayment(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrPaymentAuth):
			return c.Status(401).JSON(fiber.Map{"error": "Payment signature verification failed"})
		case errors.Is(err, service.ErrAlreadyReconciled):
			return c.Status(409).JSON(fiber.Map{"error": "Payment order not found or already reconciled"})
		default:
			return c.Status(500).JSON(fiber.Map{"error": "Payment reconciliation failed"})
		}
	}
	return c.JSON(resp)
}
