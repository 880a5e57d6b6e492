package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"stockroom/internal/domain"
	applog "stockroom/internal/log"
)

// writeError maps service errors to status codes. Storage details stay in
// the log.
func writeError(c *fiber.Ctx, err error) error {
	var invalid *domain.InvalidArgumentError
	switch {
	case errors.As(err, &invalid):
		applog.Security(c, "validation.fail", map[string]any{"field": invalid.Field})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid " + invalid.Field,
			"field": invalid.Field,
		})
	case errors.Is(err, domain.ErrStockNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no stock record for product"})
	case errors.Is(err, domain.ErrProductUnresolvable):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found in catalog"})
	default:
		applog.Error(c, "inventory.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
