package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"stockroom/internal/domain"
	applog "stockroom/internal/log"
	"stockroom/internal/services"
	"stockroom/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

type updateStockRequest struct {
	Quantity *int `json:"quantity"`
}

// GET /api/v1/inventory/:productId
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ProductID(c.Params("productId"))
	if !ok {
		return writeError(c, domain.InvalidArgument("productId"))
	}
	view, err := h.Inv.GetByProductID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

// POST|PUT /api/v1/inventory/:productId  {"quantity": n}
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ProductID(c.Params("productId"))
	if !ok {
		return writeError(c, domain.InvalidArgument("productId"))
	}

	var req updateStockRequest
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return writeError(c, domain.InvalidArgument("quantity"))
		}
	}
	if !validate.Quantity(req.Quantity) {
		return writeError(c, domain.InvalidArgument("quantity"))
	}

	view, err := h.Inv.UpdateStock(c.UserContext(), id, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "inventory.update", map[string]any{"product_id": id, "quantity": view.Quantity})
	return c.JSON(view)
}

// GET /api/v1/inventory
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	views, err := h.Inv.ListInventory(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(views)
}
