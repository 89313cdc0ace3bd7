package handler

import (
	"errors"

	"go-scanify-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BillHandler struct {
	billing service.BillingService
}

func NewBillHandler(billing service.BillingService) *BillHandler {
	return &BillHandler{billing: billing}
}

// staffIDFrom reads the authenticated staff id set by the auth middleware.
func staffIDFrom(c *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := c.Locals("staff_id").(string)
	if !ok {
		return uuid.Nil, errors.New("no authenticated staff")
	}
	return uuid.Parse(raw)
}

// Finalize persists a draft transaction. Cash bills return the rendered
// invoice synchronously; online bills return the payment order handle.
// POST /api/v1/bills
func (h *BillHandler) Finalize(c *fiber.Ctx) error {
	var req service.FinalizeBillRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	staffID, err := staffIDFrom(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid staff identity"})
	}

	resp, err := h.billing.FinalizeBill(c.Context(), staffID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrPersistence):
			return c.Status(500).JSON(fiber.Map{"error": "Failed to save bill, please retry"})
		default:
			return c.Status(502).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.Status(201).JSON(resp)
}

// GetBills lists persisted bills, newest first.
// GET /api/v1/bills
func (h *BillHandler) GetBills(c *fiber.Ctx) error {
	bills, err := h.billing.GetAllBills()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(bills)
}

// GetBill fetches one bill by id.
// GET /api/v1/bills/:id
func (h *BillHandler) GetBill(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid bill ID"})
	}

	bill, err := h.billing.GetBill(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Bill not found"})
	}
	return c.JSON(bill)
}
