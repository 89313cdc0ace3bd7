package middleware

import (
	"strings"

	"go-scanify-pos/internal/repository"
	"go-scanify-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the bearer token and resolves the staff identity
// it names against the database, making it available to downstream
// handlers.
func RequireAuth(staffRepo repository.StaffRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		staff, err := staffRepo.FindByID(claims.StaffID)
		if err != nil || !staff.IsActive {
			return c.Status(401).JSON(fiber.Map{"error": "Staff not found or inactive"})
		}

		c.Locals("staff_id", staff.ID.String())
		c.Locals("staff_name", staff.Name)
		c.Locals("staff_email", staff.Email)

		return c.Next()
	}
}
