package handler

import (
	"errors"

	"go-scanify-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	products service.ProductService
}

func NewProductHandler(products service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// LookupByBarcode resolves a scanned barcode for the billing session.
// GET /api/v1/products/barcode/:barcode?action=sell|return
func (h *ProductHandler) LookupByBarcode(c *fiber.Ctx) error {
	barcode := c.Params("barcode")
	action := c.Query("action", "sell")

	product, err := h.products.LookupByBarcode(c.Context(), barcode, action)
	if err != nil {
		if errors.Is(err, service.ErrLookupNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Product not found or not in the required state"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Product lookup failed"})
	}
	return c.JSON(product)
}
